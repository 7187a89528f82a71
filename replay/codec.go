package replay

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Decoder reads one action per JSON line from an ordered stream. The
// stream is consumed strictly in order; a malformed or unknown record
// is a decode error and poisons the rest of the stream.
type Decoder struct {
	dec *json.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Decode returns the next action, io.EOF at a clean end of stream.
func (d *Decoder) Decode() (*Action, error) {
	var action Action
	if err := d.dec.Decode(&action); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "failed to decode context action")
	}
	if err := action.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid context action")
	}
	return &action, nil
}

// Encoder writes actions as JSON lines, the inverse of Decoder. It is
// shared by the wire transport and the file recorder.
type Encoder struct {
	enc *json.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

func (e *Encoder) Encode(action *Action) error {
	if err := action.Validate(); err != nil {
		return errors.Wrap(err, "refusing to encode invalid context action")
	}
	return e.enc.Encode(action)
}
