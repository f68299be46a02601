// Package server exposes the analyzer over gRPC using a schema parsed at
// runtime rather than protoc-generated stubs — the same dynamic-message
// pattern funvibe/funxy's internal/evaluator/builtins_grpc.go uses to let
// scripts call arbitrary gRPC services without a build step. Here we run
// it the other direction: we parse our own .proto text at startup with
// jhump/protoreflect's protoparse, build a *grpc.ServiceDesc by hand from
// the resulting descriptor, and register dynamic.Message handlers that
// drive internal/lexer, internal/parser, and internal/analyzer directly.
package server

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/funvibe/funxy-race/internal/analyzer"
	"github.com/funvibe/funxy-race/internal/conflicts"
	"github.com/funvibe/funxy-race/internal/lexer"
	"github.com/funvibe/funxy-race/internal/parser"
)

const protoFile = "race.proto"

const protoSource = `
syntax = "proto3";

package race;

service RaceAnalyzer {
  rpc AnalyzeSource(AnalyzeRequest) returns (AnalyzeResponse);
}

message AnalyzeRequest {
  string source = 1;
}

message RaceWarning {
  string var = 1;
  string kind = 2;
  int32 line_a = 3;
  string ctx_a = 4;
  repeated int32 lines_b = 5;
  string ctx_b = 6;
}

message AnalyzeResponse {
  repeated RaceWarning warnings = 1;
  string error = 2;
}
`

// ServiceDescriptor parses race.proto and returns its RaceAnalyzer service
// descriptor, ready to be registered against a *grpc.Server.
func ServiceDescriptor() (*desc.ServiceDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
	}
	fds, err := parser.ParseFiles(protoFile)
	if err != nil {
		return nil, fmt.Errorf("server: parsing %s: %w", protoFile, err)
	}
	if len(fds) == 0 {
		return nil, fmt.Errorf("server: %s produced no file descriptor", protoFile)
	}

	svc := fds[0].FindService("race.RaceAnalyzer")
	if svc == nil {
		return nil, fmt.Errorf("server: race.RaceAnalyzer service not found in %s", protoFile)
	}
	return svc, nil
}

// Register builds a grpc.ServiceDesc from the parsed race.proto schema and
// registers it against srv, wiring its single RPC to analyzeHandler.
func Register(srv *grpc.Server) error {
	svcDesc, err := ServiceDescriptor()
	if err != nil {
		return err
	}

	method := svcDesc.FindMethodByName("AnalyzeSource")
	if method == nil {
		return fmt.Errorf("server: AnalyzeSource method not found")
	}

	gsd := &grpc.ServiceDesc{
		ServiceName: svcDesc.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: method.GetName(),
				Handler:    analyzeHandler(method),
			},
		},
		Metadata: protoFile,
	}

	srv.RegisterService(gsd, nil)
	return nil
}

func analyzeHandler(method *desc.MethodDescriptor) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		req := dynamic.NewMessage(method.GetInputType())
		if err := dec(req); err != nil {
			return nil, err
		}

		handler := func(ctx context.Context, reqMsg interface{}) (interface{}, error) {
			return handleAnalyzeSource(method, reqMsg.(*dynamic.Message))
		}

		if interceptor == nil {
			return handler(ctx, req)
		}
		info := &grpc.UnaryServerInfo{FullMethod: "/" + method.GetService().GetFullyQualifiedName() + "/" + method.GetName()}
		return interceptor(ctx, req, info, handler)
	}
}

func handleAnalyzeSource(method *desc.MethodDescriptor, req *dynamic.Message) (*dynamic.Message, error) {
	source, _ := req.TryGetFieldByName("source")
	src, _ := source.(string)

	resp := dynamic.NewMessage(method.GetOutputType())

	toks, err := lexer.Lex(src)
	if err != nil {
		resp.SetFieldByName("error", err.Error())
		return resp, nil
	}

	prog, err := parser.ParseProgram(toks)
	if err != nil {
		resp.SetFieldByName("error", err.Error())
		return resp, nil
	}

	warnings, diag := analyzer.Analyze(prog)
	if diag != nil {
		resp.SetFieldByName("error", diag.Error())
		return resp, nil
	}

	warningType := method.GetOutputType().FindFieldByName("warnings").GetMessageType()
	for _, w := range warnings {
		resp.AddRepeatedFieldByName("warnings", warningMessage(warningType, w))
	}
	return resp, nil
}

func warningMessage(msgType *desc.MessageDescriptor, w conflicts.RaceWarning) *dynamic.Message {
	m := dynamic.NewMessage(msgType)
	m.SetFieldByName("var", w.Var)
	m.SetFieldByName("kind", w.Kind)
	m.SetFieldByName("line_a", int32(w.LineA))
	m.SetFieldByName("ctx_a", w.CtxA)
	linesB := make([]int32, len(w.LinesB))
	for i, l := range w.LinesB {
		linesB[i] = int32(l)
	}
	m.SetFieldByName("lines_b", linesB)
	m.SetFieldByName("ctx_b", w.CtxB)
	return m
}
