package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
)

// MaxMemoryAddress is the largest addressable memory offset.
const MaxMemoryAddress = uint64(1<<32 - 1)

// MaxSliceSize bounds the words a single instruction may read or write as one range.
const MaxSliceSize = 1 << 20

// Memory is a sparse word addressable store owned by a single context.
type Memory struct {
	words map[uint32]Word
}

func NewMemory() *Memory {
	return &Memory{words: make(map[uint32]Word)}
}

// Get returns the word at offset. Unwritten offsets read as field 0.
func (m *Memory) Get(offset uint32) Word {
	if w, ok := m.words[offset]; ok {
		return w
	}
	return Word{tag: TagFF}
}

func (m *Memory) Set(offset uint32, w Word) {
	m.words[offset] = w
}

// GetAs reads a word and checks its tag.
func (m *Memory) GetAs(offset uint32, tag Tag) (Word, error) {
	w := m.Get(offset)
	if w.tag != tag {
		return w, fmt.Errorf("%w: M[%d] is %s, expected %s", avmerrors.ErrTagMismatch, offset, w.tag, tag)
	}
	return w, nil
}

// GetU32 reads a u32 tagged word as an integer.
func (m *Memory) GetU32(offset uint32) (uint32, error) {
	w, err := m.GetAs(offset, TagU32)
	if err != nil {
		return 0, err
	}
	return uint32(w.Uint64()), nil
}

// GetIntegral reads a word that must carry a non-field tag.
func (m *Memory) GetIntegral(offset uint32) (Word, error) {
	w := m.Get(offset)
	if !w.tag.IsIntegral() {
		return w, fmt.Errorf("%w: M[%d] is %s", avmerrors.ErrNonIntegralType, offset, w.tag)
	}
	return w, nil
}

func checkRange(offset uint32, size uint32) error {
	if size > MaxSliceSize {
		return fmt.Errorf("%w: %d words at M[%d]", avmerrors.ErrSliceTooLarge, size, offset)
	}
	if uint64(offset)+uint64(size) > MaxMemoryAddress+1 {
		return fmt.Errorf("%w: [%d, %d+%d)", avmerrors.ErrAddressOutOfRange, offset, offset, size)
	}
	return nil
}

// GetSlice reads size consecutive words starting at offset.
func (m *Memory) GetSlice(offset uint32, size uint32) ([]Word, error) {
	if err := checkRange(offset, size); err != nil {
		return nil, err
	}
	out := make([]Word, size)
	for i := uint32(0); i < size; i++ {
		out[i] = m.Get(offset + i)
	}
	return out, nil
}

// GetSliceAs reads size consecutive words that must all carry tag.
func (m *Memory) GetSliceAs(offset uint32, size uint32, tag Tag) ([]Word, error) {
	ws, err := m.GetSlice(offset, size)
	if err != nil {
		return nil, err
	}
	for i, w := range ws {
		if w.tag != tag {
			return nil, fmt.Errorf("%w: M[%d] is %s, expected %s", avmerrors.ErrTagMismatch, offset+uint32(i), w.tag, tag)
		}
	}
	return ws, nil
}

// SetSlice writes ws starting at offset.
func (m *Memory) SetSlice(offset uint32, ws []Word) error {
	if err := checkRange(offset, uint32(len(ws))); err != nil {
		return err
	}
	for i, w := range ws {
		m.words[offset+uint32(i)] = w
	}
	return nil
}

// Len is the number of offsets ever written.
func (m *Memory) Len() int {
	return len(m.words)
}
