package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/service"
)

func TestResolveAttachment(t *testing.T) {
	list := []domain.AttachedFile{{ClientID: "c1"}, {ClientID: "c2"}}

	id, err := resolveAttachment(list, "2")
	require.NoError(t, err)
	assert.Equal(t, "c2", id)

	id, err = resolveAttachment(list, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", id)

	_, err = resolveAttachment(list, "3")
	assert.ErrorIs(t, err, domain.ErrAttachmentNotFound)
	_, err = resolveAttachment(list, "0")
	assert.ErrorIs(t, err, domain.ErrAttachmentNotFound)
	_, err = resolveAttachment(list, "zz")
	assert.ErrorIs(t, err, domain.ErrAttachmentNotFound)
	_, err = resolveAttachment(list, "")
	assert.Error(t, err)
}

func TestNumbered(t *testing.T) {
	assert.Equal(t, "No attachments.", numbered(nil))

	list := []domain.AttachedFile{
		{ClientID: "c1", File: domain.LocalFile{Name: "a.txt", MediaType: "text/plain", Size: 10}, RemoteID: "f-1"},
		{ClientID: "c2", File: domain.LocalFile{Name: "b.pdf", MediaType: "application/pdf", Size: 2048}, Loading: true},
	}
	assert.Equal(t, "1. 📝 a.txt (10 Bytes) ready\n2. 📄 b.pdf (2 KB) uploading...", numbered(list))
}

func TestStatusLine(t *testing.T) {
	st := service.SessionState{
		Session:     domain.Session{ID: "s-1", Status: domain.StatusConnected},
		Model:       &domain.ProviderConfig{Provider: "openai", Configs: []domain.ModelConfig{{Name: "gpt-4o"}}},
		Placeholder: "ready",
	}
	assert.Equal(t, "ready | status=connected session=s-1 model=openai/gpt-4o messages=0 attachments=0", statusLine(st))
}
