package bibtex

// FieldMap is an insertion-ordered mapping from lower-cased field name to
// Field. Field order is source order and is preserved across updates;
// determinism of the merge output depends on it.
type FieldMap struct {
	keys   []string
	fields map[string]*Field
}

// NewFieldMap returns an empty FieldMap.
func NewFieldMap() *FieldMap {
	return &FieldMap{fields: make(map[string]*Field)}
}

// Len returns the number of fields.
func (m *FieldMap) Len() int {
	return len(m.keys)
}

// Get returns the field for a key.
func (m *FieldMap) Get(key string) (*Field, bool) {
	f, ok := m.fields[key]
	return f, ok
}

// Has reports whether a key is present.
func (m *FieldMap) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

// Set inserts or overwrites a field. A new key appends to the order; an
// existing key keeps its position.
func (m *FieldMap) Set(key string, f *Field) {
	if _, ok := m.fields[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = f
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (m *FieldMap) Keys() []string {
	return m.keys
}

// Last returns the last field in order, or nil when empty.
func (m *FieldMap) Last() *Field {
	if len(m.keys) == 0 {
		return nil
	}
	return m.fields[m.keys[len(m.keys)-1]]
}

// BlockMap is an insertion-ordered mapping from composite key to block.
// It doubles as the document's sequence view during merging.
type BlockMap struct {
	keys   []string
	blocks map[string]*Block
}

// NewBlockMap returns an empty BlockMap.
func NewBlockMap() *BlockMap {
	return &BlockMap{blocks: make(map[string]*Block)}
}

// Len returns the number of blocks.
func (m *BlockMap) Len() int {
	return len(m.keys)
}

// Get returns the block for a key.
func (m *BlockMap) Get(key string) (*Block, bool) {
	b, ok := m.blocks[key]
	return b, ok
}

// Has reports whether a key is present.
func (m *BlockMap) Has(key string) bool {
	_, ok := m.blocks[key]
	return ok
}

// Set inserts or overwrites a block, appending new keys to the order.
func (m *BlockMap) Set(key string, b *Block) {
	if _, ok := m.blocks[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.blocks[key] = b
}

// Delete removes a key, preserving the order of the remaining keys.
func (m *BlockMap) Delete(key string) {
	if _, ok := m.blocks[key]; !ok {
		return
	}
	delete(m.blocks, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (m *BlockMap) Keys() []string {
	return m.keys
}
