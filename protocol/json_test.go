package protocol

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecBatchRoundTrip(t *testing.T) {
	codec := JSONCodec{}

	t.Run("WithConfig", func(t *testing.T) {
		batch := &Batch{
			Schema: SchemaV2,
			Buys:   []*Order{testOrder(1, SideBuy, testTraderA, 100, 10)},
			Sells:  []*Order{testOrder(2, SideSell, testTraderB, 50, 9)},
			Config: &RuntimeConfig{
				Timestamp:      1700000000,
				FeeBps:         25,
				MinTradeAmount: big.NewInt(3),
			},
		}

		data, err := codec.EncodeBatch(batch)
		require.NoError(t, err)

		got, err := codec.DecodeBatch(data)
		require.NoError(t, err)

		// The config object's presence pins the schema, like the binary rule.
		assert.Equal(t, SchemaV2, got.Schema)
		require.NotNil(t, got.Config)
		assert.Equal(t, uint64(25), got.Config.FeeBps)
		require.Len(t, got.Buys, 1)
		assert.Equal(t, uint64(1), got.Buys[0].ID)
		assert.Equal(t, "100", got.Buys[0].Quantity.String())
		assert.Equal(t, SideBuy, got.Buys[0].Side)
	})

	t.Run("Legacy", func(t *testing.T) {
		batch := &Batch{
			Schema: SchemaV1,
			Buys:   []*Order{testOrder(1, SideBuy, testTraderA, 100, 10)},
		}

		data, err := codec.EncodeBatch(batch)
		require.NoError(t, err)

		got, err := codec.DecodeBatch(data)
		require.NoError(t, err)
		assert.Equal(t, SchemaV1, got.Schema)
		assert.Nil(t, got.Config)
	})
}

func TestJSONCodecEncodeBatchRejects(t *testing.T) {
	codec := JSONCodec{}

	t.Run("V2WithoutConfig", func(t *testing.T) {
		_, err := codec.EncodeBatch(&Batch{Schema: SchemaV2})
		assert.ErrorIs(t, err, ErrEncode)
	})

	t.Run("V1WithConfig", func(t *testing.T) {
		_, err := codec.EncodeBatch(&Batch{Schema: SchemaV1, Config: &RuntimeConfig{}})
		assert.ErrorIs(t, err, ErrEncode)
	})
}

func TestJSONCodecDecodeBatchRejects(t *testing.T) {
	codec := JSONCodec{}

	t.Run("Garbage", func(t *testing.T) {
		_, err := codec.DecodeBatch([]byte("not json"))
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("SideFlagDisagreement", func(t *testing.T) {
		data := []byte(`{"buys":[{"id":1,"quantity":10,"price":5,"is_buy":false}],"sells":[]}`)
		_, err := codec.DecodeBatch(data)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("NegativeAmounts", func(t *testing.T) {
		data := []byte(`{"buys":[{"id":1,"quantity":-10,"price":5,"is_buy":true}],"sells":[]}`)
		_, err := codec.DecodeBatch(data)
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func TestJSONCodecTradesRoundTrip(t *testing.T) {
	codec := JSONCodec{}

	trades := []*Trade{{
		BuyOrderID:     1,
		SellOrderID:    2,
		Buyer:          testTraderA,
		Seller:         testTraderB,
		Instrument:     testTokenX,
		ExecutionPrice: big.NewInt(10),
		Quantity:       big.NewInt(50),
		TotalFee:       big.NewInt(1),
	}}

	data, err := codec.EncodeTrades(trades)
	require.NoError(t, err)

	got, err := codec.DecodeTrades(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].BuyOrderID)
	assert.Equal(t, "10", got[0].ExecutionPrice.String())
}

func TestJSONCodecNilTradeList(t *testing.T) {
	data, err := JSONCodec{}.EncodeTrades(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
