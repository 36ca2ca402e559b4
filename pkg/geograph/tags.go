package geograph

// ErrEmptyTagKey indicates an attempt to set a tag with an empty key.
type ErrEmptyTagKey struct {
	EntityID int64
}

func (e *ErrEmptyTagKey) Error() string {
	return "empty tag key"
}

func addTag(id int64, tags map[string]string, key, value string) error {
	if key == "" {
		return &ErrEmptyTagKey{EntityID: id}
	}
	tags[key] = value
	return nil
}

// AddTag sets a tag on the line. An empty key is rejected.
func (l *Line) AddTag(key, value string) error { return addTag(l.ID, l.Tags, key, value) }

// Tag returns the value for key and whether it is set.
func (l *Line) Tag(key string) (string, bool) {
	v, ok := l.Tags[key]
	return v, ok
}

// HasTag reports whether key is set.
func (l *Line) HasTag(key string) bool {
	_, ok := l.Tags[key]
	return ok
}

// RemoveTag deletes key. Removing an absent key is a no-op.
func (l *Line) RemoveTag(key string) { delete(l.Tags, key) }

// ClearTags removes every tag.
func (l *Line) ClearTags() {
	for k := range l.Tags {
		delete(l.Tags, k)
	}
}

// AddTag sets a tag on the polygon. An empty key is rejected.
func (pg *Polygon) AddTag(key, value string) error { return addTag(pg.ID, pg.Tags, key, value) }

// Tag returns the value for key and whether it is set.
func (pg *Polygon) Tag(key string) (string, bool) {
	v, ok := pg.Tags[key]
	return v, ok
}

// HasTag reports whether key is set.
func (pg *Polygon) HasTag(key string) bool {
	_, ok := pg.Tags[key]
	return ok
}

// RemoveTag deletes key. Removing an absent key is a no-op.
func (pg *Polygon) RemoveTag(key string) { delete(pg.Tags, key) }

// ClearTags removes every tag.
func (pg *Polygon) ClearTags() {
	for k := range pg.Tags {
		delete(pg.Tags, k)
	}
}
