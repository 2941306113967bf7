// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package json

import (
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// NewCodec returns a JSON-RPC 2.0 codec that accepts lowercased method names,
// e.g. "crowdsale.buyTokens" routes to the service method BuyTokens.
func NewCodec() rpc.Codec {
	return lowercase{json2.NewCodec()}
}

type lowercase struct {
	*json2.Codec
}

func (lc lowercase) NewRequest(r *http.Request) rpc.CodecRequest {
	return &lowercaseRequest{
		CodecRequest: lc.Codec.NewRequest(r).(*json2.CodecRequest),
	}
}

type lowercaseRequest struct {
	*json2.CodecRequest
}

func (r *lowercaseRequest) Method() (string, error) {
	method, err := r.CodecRequest.Method()
	if err != nil {
		return "", err
	}
	dot := strings.LastIndexByte(method, '.')
	firstRune, runeLen := utf8.DecodeRuneInString(method[dot+1:])
	if firstRune == utf8.RuneError {
		return method, nil
	}
	firstChar := string(unicode.ToUpper(firstRune))
	return method[:dot+1] + firstChar + method[dot+1+runeLen:], nil
}
