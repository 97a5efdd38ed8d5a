package wirecall

import "context"

// Param is one named argument of a call.
type Param struct {
	Name  string
	Value any
}

// P is shorthand for constructing a Param.
func P(name string, value any) Param {
	return Param{Name: name, Value: value}
}

// Call drives one complete call through a client transport: begin, add each
// param in order, finalize, receive. result must be a pointer, or nil to
// discard the response value.
func Call[TX any](t ClientTransport[TX], method MethodID, result any, params ...Param) error {
	state, err := t.BeginCall(method)
	if err != nil {
		return err
	}
	for _, p := range params {
		if err := t.AddParam(state, p.Name, p.Value); err != nil {
			return err
		}
	}
	if err := t.Finalize(state); err != nil {
		return err
	}
	if result == nil {
		var discard any
		result = &discard
	}
	return t.ReceiveResponse(result)
}

// CallAsync drives one complete call through an async client transport.
func CallAsync[TX, Final any](ctx context.Context, t AsyncClientTransport[TX, Final], method MethodID, result any, params ...Param) error {
	state, err := t.BeginCall(ctx, method)
	if err != nil {
		return err
	}
	for _, p := range params {
		if err := t.AddParam(ctx, state, p.Name, p.Value); err != nil {
			return err
		}
	}
	token, err := t.Finalize(ctx, state)
	if err != nil {
		return err
	}
	if result == nil {
		var discard any
		result = &discard
	}
	return t.ReceiveResponse(ctx, token, result)
}
