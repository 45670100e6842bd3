package protocol

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrDecode reports a payload that does not parse as any supported schema.
	ErrDecode = errors.New("protocol: malformed payload")

	// ErrEncode reports a batch or trade list that cannot be put on the wire.
	ErrEncode = errors.New("protocol: unencodable value")
)

// Codec defines the contract for translating batches and trade lists to and
// from a wire format. ABICodec is the production implementation; JSONCodec
// mirrors the same layouts for debugging and fixtures.
type Codec interface {
	DecodeBatch(data []byte) (*Batch, error)
	EncodeBatch(batch *Batch) ([]byte, error)
	DecodeTrades(data []byte) ([]*Trade, error)
	EncodeTrades(trades []*Trade) ([]byte, error)
}

var (
	orderComponents = []abi.ArgumentMarshaling{
		{Name: "id", Type: "uint256"},
		{Name: "trader", Type: "address"},
		{Name: "instrument", Type: "address"},
		{Name: "quantity", Type: "uint256"},
		{Name: "price", Type: "uint256"},
		{Name: "isBuy", Type: "bool"},
	}

	configComponents = []abi.ArgumentMarshaling{
		{Name: "timestamp", Type: "uint256"},
		{Name: "feeBps", Type: "uint256"},
		{Name: "minTradeAmount", Type: "uint256"},
	}

	tradeComponents = []abi.ArgumentMarshaling{
		{Name: "buyOrderId", Type: "uint256"},
		{Name: "sellOrderId", Type: "uint256"},
		{Name: "buyer", Type: "address"},
		{Name: "seller", Type: "address"},
		{Name: "instrument", Type: "address"},
		{Name: "executionPrice", Type: "uint256"},
		{Name: "quantity", Type: "uint256"},
		{Name: "totalFee", Type: "uint256"},
	}
)

func mustType(t string, components []abi.ArgumentMarshaling) abi.Type {
	ty, err := abi.NewType(t, "", components)
	if err != nil {
		panic(err)
	}
	return ty
}

var (
	orderArrayType  = mustType("tuple[]", orderComponents)
	configTupleType = mustType("tuple", configComponents)
	tradeArrayType  = mustType("tuple[]", tradeComponents)

	batchArgsV1 = abi.Arguments{
		{Name: "buys", Type: orderArrayType},
		{Name: "sells", Type: orderArrayType},
	}
	batchArgsV2 = abi.Arguments{
		{Name: "buys", Type: orderArrayType},
		{Name: "sells", Type: orderArrayType},
		{Name: "config", Type: configTupleType},
	}
	tradeArgs = abi.Arguments{
		{Name: "trades", Type: tradeArrayType},
	}
)

// The first head word of a payload is the offset of the buys array. It pins
// down the schema because the config tuple is static and lives in the head:
// two array offsets plus three config words give 160, two offsets alone give
// 64.
const (
	wordSize     = 32
	headOffsetV1 = 64
	headOffsetV2 = 160
)

// DetectSchema reads the leading offset word of data and maps it to a schema
// version. Anything that is not exactly a V1 or V2 head fails.
func DetectSchema(data []byte) (SchemaVersion, error) {
	if len(data) < wordSize {
		return 0, fmt.Errorf("%w: payload is %d bytes, want at least %d", ErrDecode, len(data), wordSize)
	}
	offset := new(big.Int).SetBytes(data[:wordSize])
	switch {
	case offset.Cmp(big.NewInt(headOffsetV2)) == 0:
		return SchemaV2, nil
	case offset.Cmp(big.NewInt(headOffsetV1)) == 0:
		return SchemaV1, nil
	}
	return 0, fmt.Errorf("%w: leading offset %s matches no supported schema", ErrDecode, offset)
}

// abiOrder, abiConfig and abiTrade mirror the tuple components for the
// reflection-based packing in accounts/abi. Field names must stay aligned
// with the component names.
type abiOrder struct {
	Id         *big.Int
	Trader     common.Address
	Instrument common.Address
	Quantity   *big.Int
	Price      *big.Int
	IsBuy      bool
}

type abiConfig struct {
	Timestamp      *big.Int
	FeeBps         *big.Int
	MinTradeAmount *big.Int
}

type abiTrade struct {
	BuyOrderId     *big.Int
	SellOrderId    *big.Int
	Buyer          common.Address
	Seller         common.Address
	Instrument     common.Address
	ExecutionPrice *big.Int
	Quantity       *big.Int
	TotalFee       *big.Int
}

// ABICodec reads and writes canonical contract ABI encodings of the batch
// and trade layouts.
type ABICodec struct{}

// DecodeBatch parses an order batch payload. The side flag of every order
// must agree with the array it arrived in.
func (ABICodec) DecodeBatch(data []byte) (*Batch, error) {
	schema, err := DetectSchema(data)
	if err != nil {
		return nil, err
	}

	var (
		rawBuys  []abiOrder
		rawSells []abiOrder
		cfg      *RuntimeConfig
	)

	switch schema {
	case SchemaV2:
		vals, err := batchArgsV2.Unpack(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		rawBuys = *abi.ConvertType(vals[0], new([]abiOrder)).(*[]abiOrder)
		rawSells = *abi.ConvertType(vals[1], new([]abiOrder)).(*[]abiOrder)
		rawCfg := *abi.ConvertType(vals[2], new(abiConfig)).(*abiConfig)
		cfg, err = rawCfg.runtimeConfig()
		if err != nil {
			return nil, err
		}
	case SchemaV1:
		vals, err := batchArgsV1.Unpack(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		rawBuys = *abi.ConvertType(vals[0], new([]abiOrder)).(*[]abiOrder)
		rawSells = *abi.ConvertType(vals[1], new([]abiOrder)).(*[]abiOrder)
	}

	buys, err := toOrders(rawBuys, SideBuy)
	if err != nil {
		return nil, err
	}
	sells, err := toOrders(rawSells, SideSell)
	if err != nil {
		return nil, err
	}

	return &Batch{
		Buys:   buys,
		Sells:  sells,
		Config: cfg,
		Schema: schema,
	}, nil
}

// EncodeBatch packs a batch into its schema's payload layout.
func (ABICodec) EncodeBatch(batch *Batch) ([]byte, error) {
	buys, err := fromOrders(batch.Buys, SideBuy)
	if err != nil {
		return nil, err
	}
	sells, err := fromOrders(batch.Sells, SideSell)
	if err != nil {
		return nil, err
	}

	switch batch.Schema {
	case SchemaV1:
		if batch.Config != nil {
			return nil, fmt.Errorf("%w: %s payload cannot carry a config tuple", ErrEncode, SchemaV1)
		}
		return batchArgsV1.Pack(buys, sells)
	case SchemaV2:
		if batch.Config == nil {
			return nil, fmt.Errorf("%w: %s payload requires a config tuple", ErrEncode, SchemaV2)
		}
		cfg := batch.Config
		if cfg.MinTradeAmount == nil || cfg.MinTradeAmount.Sign() < 0 {
			return nil, fmt.Errorf("%w: config minTradeAmount must be a non-negative integer", ErrEncode)
		}
		raw := abiConfig{
			Timestamp:      new(big.Int).SetUint64(cfg.Timestamp),
			FeeBps:         new(big.Int).SetUint64(cfg.FeeBps),
			MinTradeAmount: cfg.MinTradeAmount,
		}
		return batchArgsV2.Pack(buys, sells, raw)
	}
	return nil, fmt.Errorf("%w: unknown schema version %d", ErrEncode, batch.Schema)
}

// DecodeTrades parses a trade list payload.
func (ABICodec) DecodeTrades(data []byte) ([]*Trade, error) {
	vals, err := tradeArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	raw := *abi.ConvertType(vals[0], new([]abiTrade)).(*[]abiTrade)

	trades := make([]*Trade, 0, len(raw))
	for i := range raw {
		t, err := raw[i].trade()
		if err != nil {
			return nil, fmt.Errorf("%w: trade %d: %v", ErrDecode, i, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// EncodeTrades packs a trade list into the output payload layout. The
// emission order of trades is preserved byte for byte.
func (ABICodec) EncodeTrades(trades []*Trade) ([]byte, error) {
	raw := make([]abiTrade, 0, len(trades))
	for _, t := range trades {
		if t.ExecutionPrice == nil || t.Quantity == nil || t.TotalFee == nil {
			return nil, fmt.Errorf("%w: trade %d/%d has nil amounts", ErrEncode, t.BuyOrderID, t.SellOrderID)
		}
		if t.ExecutionPrice.Sign() < 0 || t.Quantity.Sign() < 0 || t.TotalFee.Sign() < 0 {
			return nil, fmt.Errorf("%w: trade %d/%d has negative amounts", ErrEncode, t.BuyOrderID, t.SellOrderID)
		}
		raw = append(raw, abiTrade{
			BuyOrderId:     new(big.Int).SetUint64(t.BuyOrderID),
			SellOrderId:    new(big.Int).SetUint64(t.SellOrderID),
			Buyer:          t.Buyer,
			Seller:         t.Seller,
			Instrument:     t.Instrument,
			ExecutionPrice: t.ExecutionPrice,
			Quantity:       t.Quantity,
			TotalFee:       t.TotalFee,
		})
	}
	return tradeArgs.Pack(raw)
}

func toOrders(raw []abiOrder, side Side) ([]*Order, error) {
	orders := make([]*Order, 0, len(raw))
	for i := range raw {
		o, err := raw[i].order(side)
		if err != nil {
			return nil, fmt.Errorf("%w: %s order %d: %v", ErrDecode, side, i, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func fromOrders(orders []*Order, side Side) ([]abiOrder, error) {
	raw := make([]abiOrder, 0, len(orders))
	for _, o := range orders {
		if o.Side != side {
			return nil, fmt.Errorf("%w: order %d is %s but sits in the %s array", ErrEncode, o.ID, o.Side, side)
		}
		if o.Quantity == nil || o.LimitPrice == nil {
			return nil, fmt.Errorf("%w: order %d has nil amounts", ErrEncode, o.ID)
		}
		if o.Quantity.Sign() < 0 || o.LimitPrice.Sign() < 0 {
			return nil, fmt.Errorf("%w: order %d has negative amounts", ErrEncode, o.ID)
		}
		raw = append(raw, abiOrder{
			Id:         new(big.Int).SetUint64(o.ID),
			Trader:     o.Trader,
			Instrument: o.Instrument,
			Quantity:   o.Quantity,
			Price:      o.LimitPrice,
			IsBuy:      o.Side == SideBuy,
		})
	}
	return raw, nil
}

func (w *abiOrder) order(side Side) (*Order, error) {
	if !w.Id.IsUint64() {
		return nil, fmt.Errorf("id %s overflows uint64", w.Id)
	}
	if w.IsBuy != (side == SideBuy) {
		return nil, fmt.Errorf("side flag of order %d disagrees with its array", w.Id.Uint64())
	}
	return &Order{
		ID:         w.Id.Uint64(),
		Trader:     w.Trader,
		Instrument: w.Instrument,
		Quantity:   w.Quantity,
		LimitPrice: w.Price,
		Side:       side,
		Filled:     new(big.Int),
	}, nil
}

func (w *abiConfig) runtimeConfig() (*RuntimeConfig, error) {
	if !w.Timestamp.IsUint64() {
		return nil, fmt.Errorf("%w: config timestamp %s overflows uint64", ErrDecode, w.Timestamp)
	}
	if !w.FeeBps.IsUint64() {
		return nil, fmt.Errorf("%w: config feeBps %s overflows uint64", ErrDecode, w.FeeBps)
	}
	return &RuntimeConfig{
		Timestamp:      w.Timestamp.Uint64(),
		FeeBps:         w.FeeBps.Uint64(),
		MinTradeAmount: w.MinTradeAmount,
	}, nil
}

func (w *abiTrade) trade() (*Trade, error) {
	if !w.BuyOrderId.IsUint64() || !w.SellOrderId.IsUint64() {
		return nil, fmt.Errorf("order id overflows uint64")
	}
	return &Trade{
		BuyOrderID:     w.BuyOrderId.Uint64(),
		SellOrderID:    w.SellOrderId.Uint64(),
		Buyer:          w.Buyer,
		Seller:         w.Seller,
		Instrument:     w.Instrument,
		ExecutionPrice: w.ExecutionPrice,
		Quantity:       w.Quantity,
		TotalFee:       w.TotalFee,
	}, nil
}
