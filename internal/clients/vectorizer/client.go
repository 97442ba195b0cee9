// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package vectorizer is a client for the optional context vectorizer
// service. Submitted tasks are posted for embedding so coding agents can
// search prior work. Indexing is strictly best effort.
package vectorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/taskqueue"
)

const defaultTimeout = 10 * time.Second

// Client posts task context to the vectorizer service.
type Client struct {
	endpoint   string
	collection string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client. A nil client is valid and indexes nothing, callers
// pass nil when the vectorizer is disabled.
func New(endpoint, collection string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("component", "vectorizer"),
	}
}

type indexRequest struct {
	Collection string            `json:"collection"`
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// IndexTask posts the task's name, description and specs for embedding.
func (c *Client) IndexTask(ctx context.Context, task *taskqueue.Task) error {
	if c == nil {
		return nil
	}

	text := task.Name
	if task.Description != "" {
		text += "\n" + task.Description
	}
	if task.TechnicalSpecs != "" {
		text += "\n" + task.TechnicalSpecs
	}

	payload := indexRequest{
		Collection: c.collection,
		ID:         task.ID.String(),
		Text:       text,
		Metadata: map[string]string{
			"command": task.Command,
			"status":  string(task.EffectiveStatus()),
		},
	}
	if task.ProjectID != uuid.Nil {
		payload.Metadata["project_id"] = task.ProjectID.String()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode index request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/index", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build index request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vectorizer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("vectorizer returned status %d", resp.StatusCode)
	}

	c.logger.Debug("indexed task context", "task_id", task.ID, "collection", c.collection)
	return nil
}
