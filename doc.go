/*
	Package wirecall defines the stepwise RPC transport contract shared by all
	wirecall transports, plus the small drivers that exercise it.

	A transport mediates between a method-call abstraction (a named method
	with named parameters) and a bidirectional byte channel. The client side
	of a call is a strict sequence: BeginCall, zero or more AddParams, one
	Finalize (which puts the request on the wire), one ReceiveResponse. The
	server side mirrors it: ReceiveCall reads one request and exposes the
	method name, ReadParam extracts named parameters on demand, SendResponse
	writes the result.

	Each transport owns its own per-call state types, so the contracts are
	parameterized by them. The jsonrpc subpackage provides the JSON-RPC 2.0
	transport in blocking and context-aware flavors; the channel subpackages
	provide byte channels over buffered streams and websockets.

	Call and Server drive the two contract sides end to end. There is no
	multiplexing: a transport instance owns its channel, and calls on it are
	strictly serial.
*/
package wirecall
