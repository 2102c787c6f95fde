package backendsvc

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JCBT04/Capstone/core/agenda"
	"github.com/JCBT04/Capstone/core/attendance"
)

var (
	_ agenda.Source     = (*Client)(nil)
	_ attendance.Source = (*Client)(nil)
)

const (
	eventsPath        = "/api/parents/events/"
	schedulesPath     = "/api/schedule/"
	notificationsPath = "/api/notifications/"
	attendancePath    = "/api/attendance/"
)

func (c *Client) Events(ctx context.Context, token string, q agenda.EventQuery) ([]agenda.Event, error) {
	query := url.Values{}
	if q.ParentID != 0 {
		query.Set("parent", strconv.Itoa(q.ParentID))
	}
	if q.LRN != "" {
		query.Set("lrn", q.LRN)
	}

	var out []agenda.Event
	err := c.getList(ctx, eventsPath, token, query, func(raw json.RawMessage) {
		var e agenda.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			c.log.Debug("skipping malformed event record", err)
			return
		}
		out = append(out, e)
	})
	return out, err
}

func (c *Client) Schedules(ctx context.Context) ([]agenda.ScheduleEntry, error) {
	var out []agenda.ScheduleEntry
	err := c.getList(ctx, schedulesPath, "", nil, func(raw json.RawMessage) {
		var s agenda.ScheduleEntry
		if err := json.Unmarshal(raw, &s); err != nil {
			c.log.Debug("skipping malformed schedule record", err)
			return
		}
		out = append(out, s)
	})
	return out, err
}

func (c *Client) Notifications(ctx context.Context, parentID int) ([]agenda.Notification, error) {
	query := url.Values{}
	if parentID != 0 {
		query.Set("parent", strconv.Itoa(parentID))
	}

	var out []agenda.Notification
	err := c.getList(ctx, notificationsPath, "", query, func(raw json.RawMessage) {
		var n agenda.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			c.log.Debug("skipping malformed notification record", err)
			return
		}
		out = append(out, n)
	})
	return out, err
}

func (c *Client) Records(ctx context.Context, studentID int) ([]attendance.Record, error) {
	query := url.Values{"student": []string{strconv.Itoa(studentID)}}

	var out []attendance.Record
	err := c.getList(ctx, attendancePath, "", query, func(raw json.RawMessage) {
		var r attendance.Record
		if err := json.Unmarshal(raw, &r); err != nil {
			c.log.Debug("skipping malformed attendance record", err)
			return
		}
		out = append(out, r)
	})
	return out, err
}
