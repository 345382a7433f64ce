package move

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
)

// PayloadFormat tags encoded payloads.
const PayloadFormat = "x-clipbook-handles"

// ErrBadPayload is returned when an encoded payload cannot be decoded.
var ErrBadPayload = errors.New("malformed drag payload")

const handleSize = 8

// Payload is a transferable selection: the handles of the selected
// top-level items, in selection order.
type Payload struct {
	Items []tree.Handle
}

// MarshalBinary encodes the payload as the format tag followed by each
// handle's index and generation as big-endian uint32s.
func (p Payload) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, len(PayloadFormat)+handleSize*len(p.Items))
	buf = append(buf, PayloadFormat...)
	for _, h := range p.Items {
		buf = binary.BigEndian.AppendUint32(buf, h.Index)
		buf = binary.BigEndian.AppendUint32(buf, h.Generation)
	}
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (p *Payload) UnmarshalBinary(data []byte) error {
	if !bytes.HasPrefix(data, []byte(PayloadFormat)) {
		return fmt.Errorf("%w: missing %s tag", ErrBadPayload, PayloadFormat)
	}
	data = data[len(PayloadFormat):]
	if len(data)%handleSize != 0 {
		return fmt.Errorf("%w: truncated handle (%d trailing bytes)", ErrBadPayload, len(data)%handleSize)
	}

	items := make([]tree.Handle, 0, len(data)/handleSize)
	for len(data) > 0 {
		items = append(items, tree.Handle{
			Index:      binary.BigEndian.Uint32(data[0:4]),
			Generation: binary.BigEndian.Uint32(data[4:8]),
		})
		data = data[handleSize:]
	}
	p.Items = items
	return nil
}

// Pair addresses a node as a row under a parent group. Pairs are only
// meaningful against the tree state at the time they are resolved.
type Pair struct {
	Parent tree.Handle
	Row    int
}

// ResolvePairs turns (parent, row) pairs into a handle payload by looking up
// each row under its parent's current children.
func ResolvePairs(t *tree.Tree, pairs []Pair) (Payload, error) {
	items := make([]tree.Handle, 0, len(pairs))
	for _, pair := range pairs {
		h, err := t.ChildAt(pair.Parent, pair.Row)
		if err != nil {
			return Payload{}, fmt.Errorf("resolving row %d: %w", pair.Row, err)
		}
		items = append(items, h)
	}
	return Payload{Items: items}, nil
}
