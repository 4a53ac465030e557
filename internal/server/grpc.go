// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"fmt"
	"net"

	"github.com/MKhiriev/go-ledger-sync/internal/config"
	myGRPC "github.com/MKhiriev/go-ledger-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"

	"google.golang.org/grpc"
)

type grpcServer struct {
	handler *myGRPC.Handler
	address string

	server          *grpc.Server
	gRPCNetListener net.Listener

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.ServerTransport, logger *logger.Logger) *grpcServer {
	srv := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLogging))
	handler.Register(srv)

	return &grpcServer{
		handler: handler,
		address: cfg.GRPCAddress,
		server:  srv,
		logger:  logger,
	}
}

func (g *grpcServer) name() string {
	return "gRPC"
}

func (g *grpcServer) listen() error {
	ln, err := net.Listen("tcp", g.address)
	if err != nil {
		return fmt.Errorf("%w: grpc %s: %w", errListen, g.address, err)
	}
	g.gRPCNetListener = ln
	return nil
}

func (g *grpcServer) serve() error {
	g.logger.Info().Str("address", g.gRPCNetListener.Addr().String()).Msg("Launching GRPC server")
	return g.server.Serve(g.gRPCNetListener)
}

func (g *grpcServer) shutdown() {
	g.logger.Info().Msg("GRPC server Shutdown")
	g.handler.Shutdown()
	g.server.GracefulStop()
	if g.gRPCNetListener != nil {
		_ = g.gRPCNetListener.Close()
	}
}
