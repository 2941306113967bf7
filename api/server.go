// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/log"
	"github.com/luxfi/pubsub"

	"github.com/luxfi/crowdsale/sale"
	"github.com/luxfi/crowdsale/utils/json"
)

// NewEventServer creates the pubsub server that streams sale events.
// Hand its events.ServerSink wrapper to the controller as the event sink.
func NewEventServer(logger log.Logger) *pubsub.Server {
	return pubsub.New(logger)
}

// NewHTTPHandler mounts the crowdsale RPC service at the root and the
// pubsub event stream at /events.
func NewHTTPHandler(controller *sale.Controller, eventServer *pubsub.Server, logger log.Logger) (http.Handler, error) {
	codec := json.NewCodec()

	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(codec, "application/json")
	rpcServer.RegisterCodec(codec, "application/json;charset=UTF-8")
	if err := rpcServer.RegisterService(NewService(controller, logger), "crowdsale"); err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Handle("/events", eventServer)
	router.PathPrefix("/").Handler(rpcServer)
	return router, nil
}
