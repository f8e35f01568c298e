package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/medbook/internal/client/models"
)

func ownerQuery(userID int64) url.Values {
	return url.Values{"user_id": []string{strconv.FormatInt(userID, 10)}}
}

// ListAnalyses never fails on a malformed body; it returns an empty list.
func (c *Client) ListAnalyses(ctx context.Context, userID int64) ([]models.Analysis, error) {
	data, err := c.get(ctx, "/analyses", ownerQuery(userID))
	if err != nil {
		return []models.Analysis{}, err
	}
	return decodeList[models.Analysis](ctx, c.logger, data, "analyses"), nil
}

func (c *Client) CreateAnalysis(ctx context.Context, in models.AnalysisInput) (string, error) {
	return c.message(ctx, http.MethodPost, "/analyses", in)
}

// ListAppointments never fails on a malformed body; it returns an empty list.
func (c *Client) ListAppointments(ctx context.Context, userID int64) ([]models.Appointment, error) {
	data, err := c.get(ctx, "/appointments", ownerQuery(userID))
	if err != nil {
		return []models.Appointment{}, err
	}
	return decodeList[models.Appointment](ctx, c.logger, data, "appointments"), nil
}

func (c *Client) CreateAppointment(ctx context.Context, in models.AppointmentInput) (string, error) {
	return c.message(ctx, http.MethodPost, "/appointments", in)
}

func (c *Client) UpdateAppointment(ctx context.Context, id int64, in models.AppointmentInput) (string, error) {
	return c.message(ctx, http.MethodPut, "/appointments/"+strconv.FormatInt(id, 10), in)
}

func (c *Client) DeleteAppointment(ctx context.Context, id int64) (string, error) {
	return c.message(ctx, http.MethodDelete, "/appointments/"+strconv.FormatInt(id, 10), nil)
}

// DashboardStats returns counters plus the recent/upcoming lists; malformed
// parts degrade to zero values.
func (c *Client) DashboardStats(ctx context.Context, userID int64) (models.DashboardStats, error) {
	empty := models.DashboardStats{RecentAnalyses: []models.Analysis{}, UpcomingAppointments: []models.Appointment{}}

	data, err := c.get(ctx, "/dashboard/stats", ownerQuery(userID))
	if err != nil {
		return empty, err
	}

	var dto statsDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		c.logger.Warn(ctx, "malformed dashboard stats", "error", err)
		return empty, nil
	}
	return models.DashboardStats{
		TotalAnalyses:        dto.Stats.TotalAnalyses,
		TotalAppointments:    dto.Stats.TotalAppointments,
		RecentAnalyses:       decodeRaw[models.Analysis](ctx, c.logger, dto.RecentAnalyses, "recent_analyses"),
		UpcomingAppointments: decodeRaw[models.Appointment](ctx, c.logger, dto.UpcomingAppointments, "upcoming_appointments"),
	}, nil
}

func (c *Client) message(ctx context.Context, method, path string, body any) (string, error) {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return "", err
	}
	return messageOf(data), nil
}
