package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blackwell-systems/reportwatch/internal/engine"
	"github.com/blackwell-systems/reportwatch/internal/store"
)

var (
	detectSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"user_id":{"type":"string"},` +
		`"company_id":{"type":"string"},` +
		`"start":{"type":"string","description":"Period start, YYYY-MM-DD or RFC 3339 (default 7 days before end)"},` +
		`"end":{"type":"string","description":"Period end, YYYY-MM-DD or RFC 3339 (default now)"}` +
		`},"required":["user_id","company_id"],"additionalProperties":false}`)
	recommendSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"user_id":{"type":"string"},` +
		`"company_id":{"type":"string"},` +
		`"role":{"type":"string","description":"Caller role; admin sees every report"}` +
		`},"required":["user_id","company_id"],"additionalProperties":false}`)
	findingsSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"user_id":{"type":"string"},` +
		`"company_id":{"type":"string"},` +
		`"kind":{"type":"string"},` +
		`"limit":{"type":"integer","description":"Maximum rows (default 20)"}` +
		`},"additionalProperties":false}`)
)

// defaultFindingsLimit bounds list_findings when no limit is given.
const defaultFindingsLimit = 20

type detectArgs struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type recommendArgs struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

type findingsArgs struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Kind      string `json:"kind"`
	Limit     *int   `json:"limit"`
}

// FindingsResult is the list_findings payload.
type FindingsResult struct {
	Findings []store.FindingRow `json:"findings"`
}

// addTools registers the insight tools on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "run_anomaly_detection",
		Description: "Run every anomaly detector over a user's dashboard data for a period and return findings with a severity summary.",
		InputSchema: detectSchema,
		Handler:     s.handleRunAnomalyDetection,
	})
	s.registerTool(toolDef{
		Name:        "run_recommendations",
		Description: "Recommend reports for a user from their access history and the catalog they can see.",
		InputSchema: recommendSchema,
		Handler:     s.handleRunRecommendations,
	})
	s.registerTool(toolDef{
		Name:        "list_findings",
		Description: "List persisted anomaly findings, newest first.",
		InputSchema: findingsSchema,
		Handler:     s.handleListFindings,
	})
}

func decodeArgs(args json.RawMessage, dst any) error {
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func requireIdentity(userID, companyID string) error {
	if userID == "" || companyID == "" {
		return errors.New("user_id and company_id are required")
	}
	return nil
}

func (s *Server) handleRunAnomalyDetection(ctx context.Context, args json.RawMessage) (any, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireIdentity(a.UserID, a.CompanyID); err != nil {
		return nil, err
	}
	start, end, err := engine.ParsePeriod(a.Start, a.End, s.now())
	if err != nil {
		return nil, err
	}
	return s.insights.RunAnomalyDetection(ctx, a.UserID, a.CompanyID, start, end)
}

func (s *Server) handleRunRecommendations(ctx context.Context, args json.RawMessage) (any, error) {
	var a recommendArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireIdentity(a.UserID, a.CompanyID); err != nil {
		return nil, err
	}
	return s.insights.RunRecommendations(ctx, a.UserID, a.CompanyID, a.Role)
}

func (s *Server) handleListFindings(ctx context.Context, args json.RawMessage) (any, error) {
	var a findingsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	limit := defaultFindingsLimit
	if a.Limit != nil {
		if *a.Limit <= 0 {
			return nil, fmt.Errorf("limit must be positive, got %d", *a.Limit)
		}
		limit = *a.Limit
	}
	rows, err := s.findings.ListFindings(ctx, store.FindingFilter{
		UserID:    a.UserID,
		CompanyID: a.CompanyID,
		Kind:      a.Kind,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []store.FindingRow{}
	}
	return FindingsResult{Findings: rows}, nil
}
