package storage

// undoEntry restores one key of the dirty set.
type undoEntry struct {
	key     string
	prev    []byte
	existed bool
}

// overlay buffers writes over an optional backing store and journals them per checkpoint.
// A nil backing store makes the dirty set the whole state.
type overlay struct {
	store *PersistenceStore
	dirty map[string][]byte
	undo  [][]undoEntry
}

func newOverlay(store *PersistenceStore) *overlay {
	return &overlay{store: store, dirty: make(map[string][]byte)}
}

func (o *overlay) get(key []byte) ([]byte, bool, error) {
	if v, ok := o.dirty[string(key)]; ok {
		return v, true, nil
	}
	if o.store == nil {
		return nil, false, nil
	}
	return o.store.Get(key)
}

func (o *overlay) put(key, value []byte) {
	k := string(key)
	if n := len(o.undo); n > 0 {
		prev, existed := o.dirty[k]
		o.undo[n-1] = append(o.undo[n-1], undoEntry{key: k, prev: prev, existed: existed})
	}
	o.dirty[k] = value
}

func (o *overlay) checkpoint() {
	o.undo = append(o.undo, nil)
}

// commit folds the innermost level into its parent.
func (o *overlay) commit() {
	n := len(o.undo)
	if n == 0 {
		return
	}
	top := o.undo[n-1]
	o.undo = o.undo[:n-1]
	if n > 1 {
		o.undo[n-2] = append(o.undo[n-2], top...)
	}
}

// revert undoes the innermost level in reverse order.
func (o *overlay) revert() {
	n := len(o.undo)
	if n == 0 {
		return
	}
	top := o.undo[n-1]
	o.undo = o.undo[:n-1]
	for i := len(top) - 1; i >= 0; i-- {
		e := top[i]
		if e.existed {
			o.dirty[e.key] = e.prev
		} else {
			delete(o.dirty, e.key)
		}
	}
}

func (o *overlay) depth() int {
	return len(o.undo)
}
