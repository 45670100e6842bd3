package rollup

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clearing "github.com/0x5487/clearing-engine"
	"github.com/0x5487/clearing-engine/protocol"
)

var (
	testTraderBuy  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTraderSell = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testToken      = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
)

func testEngine(t *testing.T) *clearing.Engine {
	t.Helper()
	engine, err := clearing.NewEngine(clearing.DefaultConfig())
	require.NoError(t, err)
	return engine
}

// crossingPayload encodes one crossing pair as a legacy (config-less) batch.
func crossingPayload(t *testing.T) string {
	t.Helper()

	batch := &protocol.Batch{
		Schema: protocol.SchemaV1,
		Buys: []*protocol.Order{{
			ID:         1,
			Trader:     testTraderBuy,
			Instrument: testToken,
			Quantity:   big.NewInt(100),
			LimitPrice: big.NewInt(10),
			Side:       protocol.SideBuy,
		}},
		Sells: []*protocol.Order{{
			ID:         2,
			Trader:     testTraderSell,
			Instrument: testToken,
			Quantity:   big.NewInt(50),
			LimitPrice: big.NewInt(9),
			Side:       protocol.SideSell,
		}},
	}

	payload, err := (protocol.ABICodec{}).EncodeBatch(batch)
	require.NoError(t, err)
	return hexutil.Encode(payload)
}

func TestAdapterAdvance(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		sink := NewMemorySink()
		adapter, err := NewAdapter(testEngine(t),
			WithNoticeSink(sink),
			WithReportSink(sink),
		)
		require.NoError(t, err)

		notice, err := adapter.Advance(crossingPayload(t))
		require.NoError(t, err)
		require.NotNil(t, notice)

		assert.Equal(t, 1, sink.NoticeCount())
		assert.Equal(t, 0, sink.ReportCount())
		assert.True(t, strings.HasPrefix(notice.Hex(), "0x"))

		trades, err := (protocol.ABICodec{}).DecodeTrades(sink.Notice(0).Payload)
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Equal(t, uint64(1), trades[0].BuyOrderID)
		assert.Equal(t, "10", trades[0].ExecutionPrice.String())
	})

	t.Run("PrefixlessHexAccepted", func(t *testing.T) {
		adapter, err := NewAdapter(testEngine(t))
		require.NoError(t, err)

		payload := strings.TrimPrefix(crossingPayload(t), "0x")
		notice, err := adapter.Advance(payload)
		require.NoError(t, err)
		assert.NotEmpty(t, notice.Payload)
	})

	t.Run("BadHexReported", func(t *testing.T) {
		sink := NewMemorySink()
		adapter, err := NewAdapter(testEngine(t), WithReportSink(sink))
		require.NoError(t, err)

		_, err = adapter.Advance("0xzz")
		require.Error(t, err)
		assert.ErrorIs(t, err, protocol.ErrDecode)

		require.Equal(t, 1, sink.ReportCount())
		assert.NotEmpty(t, sink.Report(0).Message)
	})

	t.Run("UndecodablePayloadReported", func(t *testing.T) {
		sink := NewMemorySink()
		adapter, err := NewAdapter(testEngine(t), WithReportSink(sink))
		require.NoError(t, err)

		_, err = adapter.Advance("0xdeadbeef")
		assert.ErrorIs(t, err, protocol.ErrDecode)
		assert.Equal(t, 1, sink.ReportCount())
	})

	t.Run("NoticeSinkFailureSurfaces", func(t *testing.T) {
		sinkErr := errors.New("host unreachable")
		adapter, err := NewAdapter(testEngine(t),
			WithNoticeSink(noticeSinkFunc(func(*Notice) error { return sinkErr })),
		)
		require.NoError(t, err)

		_, err = adapter.Advance(crossingPayload(t))
		assert.ErrorIs(t, err, sinkErr)
	})
}

func TestAdapterInspect(t *testing.T) {
	adapter, err := NewAdapter(testEngine(t))
	require.NoError(t, err)

	status := adapter.Inspect()
	assert.Equal(t, clearing.EngineVersion, status.EngineVersion)
	assert.Equal(t, "strict", status.Mode)
	assert.Equal(t, clearing.DefaultMaxTradesPerBatch, status.MaxTradesPerBatch)
	assert.Equal(t, "1", status.MinTradeAmount)
	assert.Equal(t, uint64(clearing.DefaultMakerFeeBps), status.MakerFeeBps)
	assert.Equal(t, "0.1%", status.MakerFeeRate)
	assert.Equal(t, "0.2%", status.TakerFeeRate)
}

func TestAdapterHandle(t *testing.T) {
	adapter, err := NewAdapter(testEngine(t))
	require.NoError(t, err)

	t.Run("Advance", func(t *testing.T) {
		resp := adapter.Handle(&Request{
			Type: RequestAdvance,
			Data: RequestData{Payload: crossingPayload(t)},
		})
		assert.Equal(t, ResponseNotice, resp.Type)
		assert.True(t, strings.HasPrefix(resp.Payload, "0x"))
	})

	t.Run("AdvanceFailure", func(t *testing.T) {
		resp := adapter.Handle(&Request{
			Type: RequestAdvance,
			Data: RequestData{Payload: "0x00"},
		})
		assert.Equal(t, ResponseReport, resp.Type)
		assert.NotEmpty(t, resp.Message)
		assert.Empty(t, resp.Payload)
	})

	t.Run("Inspect", func(t *testing.T) {
		resp := adapter.Handle(&Request{Type: RequestInspect})
		assert.Equal(t, ResponseStatus, resp.Type)
		require.NotNil(t, resp.Status)
		assert.Equal(t, clearing.EngineVersion, resp.Status.EngineVersion)
	})

	t.Run("UnknownType", func(t *testing.T) {
		resp := adapter.Handle(&Request{Type: RequestType("shutdown")})
		assert.Equal(t, ResponseReport, resp.Type)
		assert.Contains(t, resp.Message, "shutdown")
	})
}

func TestNewAdapter(t *testing.T) {
	t.Run("NilEngine", func(t *testing.T) {
		_, err := NewAdapter(nil)
		assert.ErrorIs(t, err, clearing.ErrInvalidParam)
	})

	t.Run("NilSink", func(t *testing.T) {
		_, err := NewAdapter(testEngine(t), WithNoticeSink(nil))
		assert.ErrorIs(t, err, clearing.ErrInvalidParam)
	})
}

// noticeSinkFunc adapts a function to the NoticeSink interface.
type noticeSinkFunc func(*Notice) error

func (f noticeSinkFunc) SendNotice(n *Notice) error {
	return f(n)
}
