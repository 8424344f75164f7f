package vm

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
)

// Bytecode files are a four-byte magic followed by a gob stream of
// the main chunk. Only literal values and function prototypes appear
// in constant pools, so the registered type set below is closed.
var bytecodeMagic = [4]byte{'E', 'B', 'C', 1}

func init() {
	gob.Register(&evaluator.Number{})
	gob.Register(&evaluator.String{})
	gob.Register(&evaluator.None{})
	gob.Register(&CompiledFunction{})
}

// WriteChunk serializes a compiled chunk.
func WriteChunk(w io.Writer, chunk *Chunk) error {
	if _, err := w.Write(bytecodeMagic[:]); err != nil {
		return fmt.Errorf("write bytecode header: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(chunk); err != nil {
		return fmt.Errorf("encode chunk: %w", err)
	}
	return nil
}

// ReadChunk deserializes a chunk written by WriteChunk.
func ReadChunk(r io.Reader) (*Chunk, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read bytecode header: %w", err)
	}
	if magic != bytecodeMagic {
		return nil, fmt.Errorf("not a bytecode file (bad magic %q)", magic[:])
	}
	chunk := &Chunk{}
	if err := gob.NewDecoder(r).Decode(chunk); err != nil {
		return nil, fmt.Errorf("decode chunk: %w", err)
	}
	return chunk, nil
}
