package docker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// buildMessage is one line of the daemon's JSON progress stream.
type buildMessage struct {
	Stream      string          `json:"stream,omitempty"`
	Status      string          `json:"status,omitempty"`
	Progress    string          `json:"progress,omitempty"`
	ID          string          `json:"id,omitempty"`
	Error       string          `json:"error,omitempty"`
	ErrorDetail *errorDetail    `json:"errorDetail,omitempty"`
	Aux         json.RawMessage `json:"aux,omitempty"`
}

type errorDetail struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// auxImageID is the aux payload carrying the built image ID.
type auxImageID struct {
	ID string `json:"ID"`
}

// streamProgress relays build output to out and returns the image ID. An
// error message in the stream becomes the returned error.
func streamProgress(r io.Reader, out io.Writer) (string, error) {
	if out == nil {
		out = io.Discard
	}

	var imageID string
	dec := json.NewDecoder(r)
	for {
		var msg buildMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return imageID, nil
			}
			return imageID, fmt.Errorf("read build output: %w", err)
		}

		if msg.ErrorDetail != nil && msg.ErrorDetail.Message != "" {
			return imageID, errors.New(msg.ErrorDetail.Message)
		}
		if msg.Error != "" {
			return imageID, errors.New(msg.Error)
		}

		if len(msg.Aux) > 0 {
			var aux auxImageID
			if err := json.Unmarshal(msg.Aux, &aux); err == nil && aux.ID != "" {
				imageID = aux.ID
			}
		}

		switch {
		case msg.Stream != "":
			fmt.Fprint(out, msg.Stream)
		case msg.Status != "":
			line := msg.Status
			if msg.ID != "" {
				line = msg.ID + ": " + line
			}
			if msg.Progress != "" {
				line += " " + msg.Progress
			}
			fmt.Fprintln(out, strings.TrimRight(line, "\n"))
		}
	}
}
