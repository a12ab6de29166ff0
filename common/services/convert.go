package services

import (
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/mo"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func optText(o mo.Option[string]) pgtype.Text {
	v, ok := o.Get()
	return pgtype.Text{String: v, Valid: ok}
}

func optFloat(o mo.Option[float64]) pgtype.Float8 {
	v, ok := o.Get()
	return pgtype.Float8{Float64: v, Valid: ok}
}

func optInt4(o mo.Option[int32]) pgtype.Int4 {
	v, ok := o.Get()
	return pgtype.Int4{Int32: v, Valid: ok}
}

func int4(n int) pgtype.Int4 {
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func floatPtr(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}

func int4Ptr(i pgtype.Int4) *int32 {
	if !i.Valid {
		return nil
	}
	return &i.Int32
}

// ToPropertyResponse maps a stored row to its API view.
func ToPropertyResponse(p repository.Property) models.PropertyResponse {
	images := p.ImageUrls
	if images == nil {
		images = []string{}
	}
	return models.PropertyResponse{
		ID:           p.ID,
		URL:          p.Url,
		Title:        textPtr(p.Title),
		Price:        floatPtr(p.Price),
		Rooms:        int4Ptr(p.Rooms),
		Bathrooms:    int4Ptr(p.Bathrooms),
		Surface:      floatPtr(p.Surface),
		SurfaceUnit:  textPtr(p.SurfaceUnit),
		City:         textPtr(p.City),
		Region:       textPtr(p.Region),
		Description:  textPtr(p.Description),
		PropertyType: textPtr(p.PropertyType),
		ImageURLs:    images,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToTaskResponse maps a stored task to its API view.
func ToTaskResponse(t repository.Task) models.TaskResponse {
	resp := models.TaskResponse{
		TaskID:          t.ID,
		City:            t.City,
		Region:          t.Region,
		PropertyType:    t.PropertyType,
		MaxPages:        t.MaxPages,
		Status:          models.TaskStatus(t.Status),
		PropertiesFound: t.PropertiesFound,
		Error:           textPtr(t.Error),
		StartTime:       t.StartTime,
		DurationSeconds: int4Ptr(t.DurationSeconds),
	}
	if t.EndTime.Valid {
		end := t.EndTime.Time
		resp.EndTime = &end
	}
	return resp
}
