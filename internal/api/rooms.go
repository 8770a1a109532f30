package api

import (
	"context"
	"fmt"
	"io"
)

// RoomUpdate is a partial room mutation. When Background is set the request
// is encoded as multipart/form-data (image upload); otherwise it is a JSON
// PATCH. The two encodings are mutually exclusive per call.
type RoomUpdate struct {
	Name       *string `json:"name,omitempty"`
	Slug       *string `json:"slug,omitempty"`
	Background *FileUpload
}

// FileUpload is a pending file attachment for a multipart request.
type FileUpload struct {
	Name   string
	Reader io.Reader
}

// ListRooms returns all rooms owned by the current user.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := c.do(ctx, "GET", "/rooms/", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateRoom creates a new room.
func (c *Client) CreateRoom(ctx context.Context, name, slug string) (*Room, error) {
	payload := map[string]string{"name": name, "slug": slug}
	var room Room
	if err := c.do(ctx, "POST", "/rooms/", payload, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoom applies a partial update to a room. The encoding is chosen by
// the presence of a pending background file.
func (c *Client) UpdateRoom(ctx context.Context, id int64, update RoomUpdate) (*Room, error) {
	path := fmt.Sprintf("/rooms/%d/", id)
	var room Room

	if update.Background != nil {
		fields := make(map[string]string)
		if update.Name != nil {
			fields["name"] = *update.Name
		}
		if update.Slug != nil {
			fields["slug"] = *update.Slug
		}
		err := c.doMultipart(ctx, "PATCH", path, fields,
			"background_image", update.Background.Name, update.Background.Reader, &room)
		if err != nil {
			return nil, err
		}
		return &room, nil
	}

	if err := c.do(ctx, "PATCH", path, update, &room); err != nil {
		return nil, err
	}
	return &room, nil
}
