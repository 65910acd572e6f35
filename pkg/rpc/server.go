// Package rpc exposes the operation catalog and the script evaluator
// over JSON-RPC 2.0 so editor and orchestration hosts can drive the
// geometry engine without linking it.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/chazu/treenail/pkg/engine"
	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/ops"
)

// Server answers ops/list, ops/describe and evaluate requests.
type Server struct {
	registry *ops.Registry
	engine   *engine.Engine
}

// NewServer wraps a registry and an engine. A nil registry falls back
// to the builtin operation catalog.
func NewServer(reg *ops.Registry, eng *engine.Engine) *Server {
	if reg == nil {
		reg = ops.Builtin()
	}
	return &Server{registry: reg, engine: eng}
}

// Serve handles requests on rwc until the connection closes or ctx ends.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, &serverHandler{server: s})
	select {
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

type serverHandler struct {
	server *Server
}

func (h *serverHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		return
	}

	result, rpcErr := h.server.dispatch(req)
	if rpcErr != nil {
		_ = conn.ReplyWithError(ctx, req.ID, rpcErr)
		return
	}
	_ = conn.Reply(ctx, req.ID, result)
}

// DescribeParams selects one operation by name.
type DescribeParams struct {
	Name string `json:"name"`
}

// EvaluateParams carries a script to run.
type EvaluateParams struct {
	Source string `json:"source"`
}

// SolidSummary reports one named solid by its bounds.
type SolidSummary struct {
	Name   string    `json:"name"`
	Bounds geom.AABB `json:"bounds"`
}

// CurveSummary reports one named curve set.
type CurveSummary struct {
	Name   string `json:"name"`
	Closed int    `json:"closed"`
	Open   int    `json:"open"`
}

// ProfileSummary reports one named profile.
type ProfileSummary struct {
	Name  string `json:"name"`
	Loops int    `json:"loops"`
}

// EvaluateResult summarizes an evaluated scene.
type EvaluateResult struct {
	Precision float64            `json:"precision"`
	Solids    []SolidSummary     `json:"solids"`
	Curves    []CurveSummary     `json:"curves"`
	Profiles  []ProfileSummary   `json:"profiles"`
	Warnings  []string           `json:"warnings,omitempty"`
	Errors    []engine.EvalError `json:"errors,omitempty"`
}

func (s *Server) dispatch(req *jsonrpc2.Request) (any, *jsonrpc2.Error) {
	switch req.Method {
	case "ops/list":
		return s.registry.List(), nil

	case "ops/describe":
		var params DescribeParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		spec, ok := s.registry.Get(params.Name)
		if !ok {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInvalidParams,
				Message: fmt.Sprintf("unknown op: %s", params.Name),
			}
		}
		return spec, nil

	case "evaluate":
		if s.engine == nil {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInternalError,
				Message: "no engine attached",
			}
		}
		var params EvaluateParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.evaluate(params.Source)

	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", req.Method),
		}
	}
}

func (s *Server) evaluate(source string) (any, *jsonrpc2.Error) {
	scene, evalErrs, err := s.engine.Evaluate(source)
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInternalError,
			Message: err.Error(),
		}
	}
	if scene == nil {
		return EvaluateResult{Errors: evalErrs}, nil
	}

	res := EvaluateResult{
		Precision: scene.Precision,
		Solids:    []SolidSummary{},
		Curves:    []CurveSummary{},
		Profiles:  []ProfileSummary{},
		Errors:    evalErrs,
	}
	for _, ns := range scene.Solids {
		res.Solids = append(res.Solids, SolidSummary{
			Name:   ns.Name,
			Bounds: ns.Solid.BoundingBox(),
		})
	}
	for _, nc := range scene.Curves {
		res.Curves = append(res.Curves, CurveSummary{
			Name:   nc.Name,
			Closed: len(nc.Closed),
			Open:   len(nc.Open),
		})
	}
	for _, np := range scene.Profiles {
		res.Profiles = append(res.Profiles, ProfileSummary{
			Name:  np.Name,
			Loops: len(np.Loops),
		})
	}
	for _, w := range scene.Warnings {
		res.Warnings = append(res.Warnings, w.String())
	}
	return res, nil
}

func unmarshalParams(req *jsonrpc2.Request, dst any) *jsonrpc2.Error {
	if req.Params == nil {
		return &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: "missing params",
		}
	}
	if err := json.Unmarshal(*req.Params, dst); err != nil {
		return &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: err.Error(),
		}
	}
	return nil
}
