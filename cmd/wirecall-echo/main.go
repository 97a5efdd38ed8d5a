package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"

	"github.com/wirecall/wirecall"
	"github.com/wirecall/wirecall/channel"
	"github.com/wirecall/wirecall/channel/wsgorilla"
	"github.com/wirecall/wirecall/jsonrpc"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`

	Serve struct {
		Bind string `long:"bind" description:"Address and port to listen on." default:"127.0.0.1:9080"`
		WS   bool   `long:"ws" description:"Serve websocket upgrades over HTTP instead of raw TCP."`
	} `command:"serve" description:"Answer echo, add and greet calls."`

	Call struct {
		Args struct {
			Addr   string   `positional-arg-name:"addr" description:"host:port of a raw TCP server, or a ws:// URL."`
			Method string   `positional-arg-name:"method" description:"Method name to call."`
			Params []string `positional-arg-name:"params" description:"Named parameters as name=value pairs."`
		} `positional-args:"yes" required:"yes"`
	} `command:"call" description:"Issue a single call and print the result."`
}

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

// newEchoServer registers the demo methods.
func newEchoServer() *wirecall.Server[*jsonrpc.RXState] {
	srv := &wirecall.Server[*jsonrpc.RXState]{}
	srv.Register("echo", func(ctx context.Context, params wirecall.Params[*jsonrpc.RXState]) (any, error) {
		var text string
		if err := params.Read("text", &text); err != nil {
			return nil, err
		}
		return text, nil
	})
	srv.Register("add", func(ctx context.Context, params wirecall.Params[*jsonrpc.RXState]) (any, error) {
		var a, b float64
		if err := params.Read("a", &a); err != nil {
			return nil, err
		}
		if err := params.Read("b", &b); err != nil {
			return nil, err
		}
		return a + b, nil
	})
	srv.Register("greet", func(ctx context.Context, params wirecall.Params[*jsonrpc.RXState]) (any, error) {
		var name string
		if err := params.Read("name", &name); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Hello, %s!", name), nil
	})
	return srv
}

func serveTCP(ctx context.Context, bind string) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	defer ln.Close()
	logger.Infof("Listening on tcp://%s", bind)

	srv := newEchoServer()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go func() {
			defer conn.Close()
			t := jsonrpc.New(channel.Buffered(conn))
			if err := srv.Serve(ctx, t); err != nil {
				logger.Warningf("connection from %s failed: %s", conn.RemoteAddr(), err)
			}
		}()
	}
}

func serveWS(ctx context.Context, bind string) error {
	srv := newEchoServer()
	handler := func(w http.ResponseWriter, r *http.Request) {
		ch, err := wsgorilla.Upgrade(w, r)
		if err != nil {
			logger.Debugf("websocket upgrade error from %s: %s", r.RemoteAddr, err)
			return
		}
		defer ch.Close()
		if err := srv.Serve(ctx, jsonrpc.New(ch)); err != nil {
			logger.Warningf("connection from %s failed: %s", r.RemoteAddr, err)
		}
	}
	logger.Infof("Listening on ws://%s", bind)
	return http.ListenAndServe(bind, http.HandlerFunc(handler))
}

// parseParams converts name=value pairs into call params. Values that parse
// as JSON are passed through typed; everything else is a string.
func parseParams(pairs []string) ([]wirecall.Param, error) {
	params := make([]wirecall.Param, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q is not a name=value pair", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		params = append(params, wirecall.P(name, v))
	}
	return params, nil
}

func dial(ctx context.Context, addr string) (wirecall.Channel, func() error, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		ch, err := wsgorilla.Dial(ctx, addr)
		if err != nil {
			return nil, nil, err
		}
		return ch, ch.Close, nil
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	return channel.Buffered(conn), conn.Close, nil
}

func call(ctx context.Context, options Options) error {
	params, err := parseParams(options.Call.Args.Params)
	if err != nil {
		return err
	}
	ch, closer, err := dial(ctx, options.Call.Args.Addr)
	if err != nil {
		return err
	}
	defer closer()

	t := jsonrpc.New(ch)
	var result any
	method := wirecall.MethodID{Name: options.Call.Args.Method}
	if err := wirecall.Call[*jsonrpc.TXState](t, method, &result, params...); err != nil {
		return err
	}
	out, err := json.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func subcommand(cmd string, options Options) error {
	ctx := context.Background()
	switch cmd {
	case "serve":
		if options.Serve.WS {
			return serveWS(ctx, options.Serve.Bind)
		}
		return serveTCP(ctx, options.Serve.Bind)
	case "call":
		return call(ctx, options)
	}
	return nil
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	parser.SubcommandsOptional = true
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Println(err)
		}
		return
	}

	if options.Version {
		fmt.Println(Version)
		os.Exit(0)
	}

	// Figure out the log level
	numVerbose := len(options.Verbose)
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}

	logLevel := logLevels[numVerbose]
	logWriter := os.Stderr

	SetLogger(golog.New(logWriter, logLevel))
	if logLevel == log.Debug {
		// Enable logging from subpackages
		jsonrpc.SetLogger(logWriter)
	}

	cmd := "serve"
	if parser.Active != nil {
		cmd = parser.Active.Name
	}
	if err := subcommand(cmd, options); err != nil {
		exit(2, "%s failed: %s\n", cmd, err)
	}
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}
