package wirecall

import "context"

// Params gives a handler on-demand access to the named parameters of the
// call it is serving.
type Params[RX any] struct {
	transport ServerTransport[RX]
	state     RX
}

// Read decodes the named parameter into out, which must be a pointer.
func (p Params[RX]) Read(name string, out any) error {
	return p.transport.ReadParam(p.state, name, out)
}

// HandlerFunc serves one call: it reads whichever parameters it needs and
// returns the response value.
type HandlerFunc[RX any] func(ctx context.Context, params Params[RX]) (any, error)

// Server is a method registry that can serve calls arriving on a server
// transport. The zero value is usable.
type Server[RX any] struct {
	registry map[string]HandlerFunc[RX]
}

// Register adds a handler for the named method, replacing any previous one.
func (s *Server[RX]) Register(name string, handler HandlerFunc[RX]) {
	if s.registry == nil {
		s.registry = map[string]HandlerFunc[RX]{}
	}
	s.registry[name] = handler
}

// Serve handles calls from the transport one at a time until the peer
// disconnects cleanly (returns nil), the context is cancelled, or a call
// fails. On failure the channel may be desynchronized and should be
// discarded.
func (s *Server[RX]) Serve(ctx context.Context, t ServerTransport[RX]) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		method, state, err := t.ReceiveCall()
		if err != nil {
			if IsTransportEOF(err) {
				return nil
			}
			return err
		}
		name, ok := method.Name()
		if !ok {
			return Errorf(KindUnknownMethod, "method %s is not addressable by name", method)
		}
		handler, ok := s.registry[name]
		if !ok {
			return Errorf(KindUnknownMethod, "no handler registered for method %q", name)
		}
		result, err := handler(ctx, Params[RX]{transport: t, state: state})
		if err != nil {
			return err
		}
		if err := t.SendResponse(result); err != nil {
			return err
		}
	}
}
