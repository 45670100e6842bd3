package protocol

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// JSONCodec mirrors the binary layouts as JSON objects. It exists for
// debugging output and test fixtures; on-chain consumers only ever see the
// ABI form.
type JSONCodec struct{}

type jsonOrder struct {
	ID         uint64         `json:"id"`
	Trader     common.Address `json:"trader"`
	Instrument common.Address `json:"instrument"`
	Quantity   *big.Int       `json:"quantity"`
	Price      *big.Int       `json:"price"`
	IsBuy      bool           `json:"is_buy"`
}

type jsonBatch struct {
	Buys   []jsonOrder    `json:"buys"`
	Sells  []jsonOrder    `json:"sells"`
	Config *RuntimeConfig `json:"config,omitempty"`
}

// DecodeBatch parses a JSON order batch. The schema version derives from the
// presence of the config object, matching the binary layout rule.
func (JSONCodec) DecodeBatch(data []byte) (*Batch, error) {
	var raw jsonBatch
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	buys, err := jsonToOrders(raw.Buys, SideBuy)
	if err != nil {
		return nil, err
	}
	sells, err := jsonToOrders(raw.Sells, SideSell)
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		Buys:   buys,
		Sells:  sells,
		Config: raw.Config,
		Schema: SchemaV1,
	}
	if raw.Config != nil {
		batch.Schema = SchemaV2
	}
	return batch, nil
}

// EncodeBatch renders a batch as JSON.
func (JSONCodec) EncodeBatch(batch *Batch) ([]byte, error) {
	if batch.Schema == SchemaV2 && batch.Config == nil {
		return nil, fmt.Errorf("%w: %s payload requires a config object", ErrEncode, SchemaV2)
	}
	if batch.Schema == SchemaV1 && batch.Config != nil {
		return nil, fmt.Errorf("%w: %s payload cannot carry a config object", ErrEncode, SchemaV1)
	}

	raw := jsonBatch{
		Buys:   make([]jsonOrder, 0, len(batch.Buys)),
		Sells:  make([]jsonOrder, 0, len(batch.Sells)),
		Config: batch.Config,
	}
	for _, o := range batch.Buys {
		raw.Buys = append(raw.Buys, jsonFromOrder(o))
	}
	for _, o := range batch.Sells {
		raw.Sells = append(raw.Sells, jsonFromOrder(o))
	}
	return json.Marshal(raw)
}

// DecodeTrades parses a JSON trade list.
func (JSONCodec) DecodeTrades(data []byte) ([]*Trade, error) {
	var trades []*Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return trades, nil
}

// EncodeTrades renders a trade list as JSON.
func (JSONCodec) EncodeTrades(trades []*Trade) ([]byte, error) {
	if trades == nil {
		trades = []*Trade{}
	}
	return json.Marshal(trades)
}

func jsonToOrders(raw []jsonOrder, side Side) ([]*Order, error) {
	orders := make([]*Order, 0, len(raw))
	for i, r := range raw {
		if r.IsBuy != (side == SideBuy) {
			return nil, fmt.Errorf("%w: %s order %d: side flag disagrees with its array", ErrDecode, side, i)
		}
		if r.Quantity == nil || r.Price == nil {
			return nil, fmt.Errorf("%w: %s order %d: missing amounts", ErrDecode, side, i)
		}
		if r.Quantity.Sign() < 0 || r.Price.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s order %d: negative amounts", ErrDecode, side, i)
		}
		orders = append(orders, &Order{
			ID:         r.ID,
			Trader:     r.Trader,
			Instrument: r.Instrument,
			Quantity:   r.Quantity,
			LimitPrice: r.Price,
			Side:       side,
			Filled:     new(big.Int),
		})
	}
	return orders, nil
}

func jsonFromOrder(o *Order) jsonOrder {
	return jsonOrder{
		ID:         o.ID,
		Trader:     o.Trader,
		Instrument: o.Instrument,
		Quantity:   o.Quantity,
		Price:      o.LimitPrice,
		IsBuy:      o.Side == SideBuy,
	}
}
