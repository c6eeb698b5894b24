package history

import (
	"errors"

	"github.com/manash/imgstudio/pkg/models"
)

var (
	ErrEmpty        = errors.New("history is empty")
	ErrOutOfRange   = errors.New("index out of range")
	ErrNothingToDo  = errors.New("nothing to undo or redo")
	ErrImageMissing = errors.New("image not found in gallery")
)

// History is a linear undo/redo stack of image versions. Appending after
// one or more undos discards the undone branch. In-memory only; lost when
// the process exits.
type History struct {
	versions []*models.GeneratedImage
	pointer  int
}

func New() *History {
	return &History{pointer: -1}
}

// StartNew replaces the whole timeline with a single version. Used for
// brand-new generations, as opposed to edits of an existing image.
func (h *History) StartNew(img *models.GeneratedImage) {
	h.versions = []*models.GeneratedImage{img}
	h.pointer = 0
}

// Append truncates any undone future versions and appends img as the new
// current version.
func (h *History) Append(img *models.GeneratedImage) {
	h.versions = append(h.versions[:h.pointer+1], img)
	h.pointer = len(h.versions) - 1
}

// Undo moves the pointer one version back. No-op at the first version.
func (h *History) Undo() bool {
	if h.pointer > 0 {
		h.pointer--
		return true
	}
	return false
}

// Redo moves the pointer one version forward. No-op at the last version.
func (h *History) Redo() bool {
	if h.pointer < len(h.versions)-1 {
		h.pointer++
		return true
	}
	return false
}

// JumpTo sets the pointer to an arbitrary version.
func (h *History) JumpTo(index int) error {
	if index < 0 || index >= len(h.versions) {
		return ErrOutOfRange
	}
	h.pointer = index
	return nil
}

// Current returns the version at the pointer, or nil when empty.
func (h *History) Current() *models.GeneratedImage {
	if h.pointer < 0 || h.pointer >= len(h.versions) {
		return nil
	}
	return h.versions[h.pointer]
}

func (h *History) Len() int {
	return len(h.versions)
}

func (h *History) Index() int {
	return h.pointer
}

// Versions returns the timeline oldest-first. The returned slice must not
// be mutated.
func (h *History) Versions() []*models.GeneratedImage {
	return h.versions
}

// Gallery is the unordered session collection of every image produced,
// independent of the undo/redo pointer. Entries survive being undone out
// of the active timeline and can seed a fresh one.
type Gallery struct {
	entries []*models.GeneratedImage
}

func NewGallery() *Gallery {
	return &Gallery{}
}

// Add prepends, so List returns newest-first.
func (g *Gallery) Add(img *models.GeneratedImage) {
	g.entries = append([]*models.GeneratedImage{img}, g.entries...)
}

func (g *Gallery) Get(id string) (*models.GeneratedImage, error) {
	for _, e := range g.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrImageMissing
}

func (g *Gallery) List() []*models.GeneratedImage {
	return g.entries
}

func (g *Gallery) Len() int {
	return len(g.entries)
}
