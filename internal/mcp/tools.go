package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/messwatch/internal/report"
)

type dateArgs struct {
	Date string `json:"date"`
}

type rangeArgs struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Type  string `json:"type"`
}

var (
	dateSchema  = json.RawMessage(`{"type":"object","properties":{"date":{"type":"string","description":"Calendar day, YYYY-MM-DD"}},"required":["date"],"additionalProperties":false}`)
	rangeSchema = json.RawMessage(`{"type":"object","properties":{"start":{"type":"string","description":"First day, YYYY-MM-DD"},"end":{"type":"string","description":"Last day (inclusive), YYYY-MM-DD"},"type":{"type":"string","enum":["comparison","trend","pattern"],"description":"Analysis type (default comparison)"}},"required":["start","end"],"additionalProperties":false}`)
)

// addTools registers the report tools on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "daily_report",
		Description: "Participation, per-meal ratings, comment sentiment and narrative summary for one day of mess feedback.",
		InputSchema: dateSchema,
		Handler:     s.handleDaily,
	})
	s.registerTool(toolDef{
		Name:        "weekly_report",
		Description: "Day-by-day breakdown, meal trends, weekday patterns and alerts for the Monday-Sunday week containing a date.",
		InputSchema: dateSchema,
		Handler:     s.handleWeekly,
	})
	s.registerTool(toolDef{
		Name:        "historical_report",
		Description: "Comparison of the two halves, trend fit or pattern mining over an inclusive date range.",
		InputSchema: rangeSchema,
		Handler:     s.handleHistorical,
	})
}

func (s *Server) handleDaily(ctx context.Context, args json.RawMessage) (any, error) {
	var a dateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return s.envelope(nil, report.Errorf(report.CodeInvalidArgs, err, "Invalid arguments: %v", err))
	}
	if a.Date == "" {
		return s.envelope(nil, report.Errorf(report.CodeUsage, nil, "date is required"))
	}
	return s.envelope(s.reports.Daily(ctx, a.Date))
}

func (s *Server) handleWeekly(ctx context.Context, args json.RawMessage) (any, error) {
	var a dateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return s.envelope(nil, report.Errorf(report.CodeInvalidArgs, err, "Invalid arguments: %v", err))
	}
	if a.Date == "" {
		return s.envelope(nil, report.Errorf(report.CodeUsage, nil, "date is required"))
	}
	return s.envelope(s.reports.Weekly(ctx, a.Date))
}

func (s *Server) handleHistorical(ctx context.Context, args json.RawMessage) (any, error) {
	var a rangeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return s.envelope(nil, report.Errorf(report.CodeInvalidArgs, err, "Invalid arguments: %v", err))
	}
	if a.Start == "" || a.End == "" {
		return s.envelope(nil, report.Errorf(report.CodeUsage, nil, "start and end are required"))
	}
	return s.envelope(s.reports.Historical(ctx, a.Start, a.End, a.Type))
}

// envelope renders a report outcome; error envelopes come back as a
// failedResult so the call is flagged isError.
func (s *Server) envelope(env *report.Envelope, err error) (any, error) {
	v := report.Render(env, err, s.opts.Now())
	if ee, ok := v.(*report.ErrorEnvelope); ok {
		return nil, &failedResult{payload: ee, msg: fmt.Sprintf("%s: %s", ee.Type, ee.Message)}
	}
	return v, nil
}
