package grpc

import "errors"

var (
	errInternalError  = errors.New("internal error")
	errAlreadyServing = errors.New("server already serving")
	errNotListening   = errors.New("server is not listening")
)
