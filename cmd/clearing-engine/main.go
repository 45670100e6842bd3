package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	clearing "github.com/0x5487/clearing-engine"
	"github.com/0x5487/clearing-engine/protocol"
	"github.com/0x5487/clearing-engine/rollup"
)

var (
	modeFlag    = flag.String("mode", "strict", "failure handling: strict or best-effort")
	jsonFlag    = flag.Bool("json", false, "print the matched trades as JSON instead of the hex envelope")
	inspectFlag = flag.Bool("inspect", false, "print the engine status and exit")
	levelFlag   = flag.String("log-level", "info", "log level: debug, info, warn or error")
)

func main() {
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	logger := newLogger(*levelFlag)
	clearing.SetLogger(logger)

	err := run(logger)
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run executes one request: payload in from argv or stdin, result envelope
// out on stdout, diagnostics on stderr.
func run(logger *zap.Logger) error {
	cfg, err := clearing.ConfigFromEnv()
	if err != nil {
		logger.Error("config rejected", zap.Error(err))
		return err
	}

	mode, err := parseMode(*modeFlag)
	if err != nil {
		logger.Error("bad mode flag", zap.Error(err))
		return err
	}

	engine, err := clearing.NewEngine(cfg, clearing.WithMode(mode))
	if err != nil {
		logger.Error("engine construction failed", zap.Error(err))
		return err
	}

	adapter, err := rollup.NewAdapter(engine, rollup.WithLogger(logger))
	if err != nil {
		logger.Error("adapter construction failed", zap.Error(err))
		return err
	}

	if *inspectFlag {
		return printJSON(adapter.Handle(&rollup.Request{Type: rollup.RequestInspect}))
	}

	payload, err := readPayload()
	if err != nil {
		logger.Error("no payload", zap.Error(err))
		return err
	}

	resp := adapter.Handle(&rollup.Request{
		Type: rollup.RequestAdvance,
		Data: rollup.RequestData{Payload: payload},
	})
	if resp.Type == rollup.ResponseReport {
		_ = printJSON(resp)
		return errors.New(resp.Message)
	}

	if *jsonFlag {
		raw, err := hexutil.Decode(resp.Payload)
		if err != nil {
			return err
		}
		trades, err := (protocol.ABICodec{}).DecodeTrades(raw)
		if err != nil {
			return err
		}
		out, err := (protocol.JSONCodec{}).EncodeTrades(trades)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	return printJSON(resp)
}

func newLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		zapLevel,
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func parseMode(s string) (clearing.Mode, error) {
	switch strings.ToLower(s) {
	case "strict":
		return clearing.ModeStrict, nil
	case "best-effort", "best_effort":
		return clearing.ModeBestEffort, nil
	}
	return 0, fmt.Errorf("%w: mode %q", clearing.ErrInvalidParam, s)
}

func readPayload() (string, error) {
	if flag.NArg() > 0 {
		return flag.Arg(0), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	payload := strings.TrimSpace(string(data))
	if payload == "" {
		return "", errors.New("no payload: pass a hex argument or pipe it on stdin")
	}
	return payload, nil
}

func printJSON(v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
