// Package snapshot stores the persisted subset of the design store in a single
// named key-value slot.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"roomdesigner/internal/design/models"
)

// DefaultSlotName is the slot the browser build used for local storage.
const DefaultSlotName = "furniture-design-app"

// Version of the envelope layout written by Persister.
const Version = 0

var (
	ErrEmptySlot          = errors.New("snapshot slot is empty")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Document is the persisted part of the application state. UI flags,
// selection and camera are deliberately absent.
type Document struct {
	IsLoggedIn     bool                   `json:"isLoggedIn"`
	UserName       string                 `json:"userName"`
	Projects       []models.DesignProject `json:"projects"`
	CurrentProject *models.DesignProject  `json:"currentProject"`
}

type envelope struct {
	State   Document `json:"state"`
	Version int      `json:"version"`
}

// Slot is one named location holding encoded bytes.
type Slot interface {
	// Load returns ErrEmptySlot when nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// ============================================================
// Persister
// ============================================================

// Persister encodes documents with a Codec and keeps them in a Slot.
type Persister struct {
	codec Codec
	slot  Slot
}

func NewPersister(codec Codec, slot Slot) *Persister {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Persister{codec: codec, slot: slot}
}

func (p *Persister) Load(ctx context.Context) (Document, error) {
	data, err := p.slot.Load(ctx)
	if err != nil {
		return Document{}, err
	}
	if len(data) == 0 {
		return Document{}, ErrEmptySlot
	}

	var env envelope
	if err := p.codec.Unmarshal(data, &env); err != nil {
		return Document{}, fmt.Errorf("decode %s snapshot: %w", p.codec.Name(), err)
	}
	if env.Version != Version {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return env.State, nil
}

func (p *Persister) Save(ctx context.Context, doc Document) error {
	data, err := p.codec.Marshal(envelope{State: doc, Version: Version})
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", p.codec.Name(), err)
	}
	if err := p.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
