package statedb

import "github.com/colorfulnotion/avm/types"

// SideEffects is the ordered trace a transaction emits. Entries of reverted calls are removed.
type SideEffects struct {
	PublicDataWrites []types.PublicDataWrite `json:"publicDataWrites"`
	NoteHashes       []types.NoteHash        `json:"noteHashes"`
	Nullifiers       []types.Nullifier       `json:"nullifiers"`
	PublicLogs       []types.PublicLog       `json:"publicLogs"`
	L2ToL1Messages   []types.L2ToL1Message   `json:"l2ToL1Messages"`
}

func (s SideEffects) Len() int {
	return len(s.PublicDataWrites) + len(s.NoteHashes) + len(s.Nullifiers) + len(s.PublicLogs) + len(s.L2ToL1Messages)
}

func (s *SideEffects) clone() SideEffects {
	return SideEffects{
		PublicDataWrites: append([]types.PublicDataWrite(nil), s.PublicDataWrites...),
		NoteHashes:       append([]types.NoteHash(nil), s.NoteHashes...),
		Nullifiers:       append([]types.Nullifier(nil), s.Nullifiers...),
		PublicLogs:       append([]types.PublicLog(nil), s.PublicLogs...),
		L2ToL1Messages:   append([]types.L2ToL1Message(nil), s.L2ToL1Messages...),
	}
}

// mark records the trace lengths at a checkpoint.
type mark struct {
	publicDataWrites int
	noteHashes       int
	nullifiers       int
	publicLogs       int
	l2ToL1Messages   int
	counter          uint32
}

func (s *SideEffects) mark(counter uint32) mark {
	return mark{
		publicDataWrites: len(s.PublicDataWrites),
		noteHashes:       len(s.NoteHashes),
		nullifiers:       len(s.Nullifiers),
		publicLogs:       len(s.PublicLogs),
		l2ToL1Messages:   len(s.L2ToL1Messages),
		counter:          counter,
	}
}

func (s *SideEffects) truncate(m mark) {
	s.PublicDataWrites = s.PublicDataWrites[:m.publicDataWrites]
	s.NoteHashes = s.NoteHashes[:m.noteHashes]
	s.Nullifiers = s.Nullifiers[:m.nullifiers]
	s.PublicLogs = s.PublicLogs[:m.publicLogs]
	s.L2ToL1Messages = s.L2ToL1Messages[:m.l2ToL1Messages]
}
