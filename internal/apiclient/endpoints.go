package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"studyhub/client/internal/models"
)

// Identity endpoints, consumed by the bridge.

func (c *Client) UserByProviderUID(ctx context.Context, uid string) (models.User, error) {
	var user models.User
	err := c.do(ctx, "GET", "/users/by-firebase-uid/"+url.PathEscape(uid), nil, &user)
	return user, err
}

type exchangeTokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) ExchangeToken(ctx context.Context, idToken string) (string, models.User, error) {
	var resp exchangeTokenResponse
	err := c.do(ctx, "POST", "/users/exchange-token", map[string]string{"idToken": idToken}, &resp)
	return resp.Token, resp.User, err
}

func (c *Client) CreateUser(ctx context.Context, email, fullName, providerUID string) (models.User, error) {
	body := map[string]string{
		"email":       email,
		"fullName":    fullName,
		"providerUid": providerUID,
	}
	var user models.User
	err := c.do(ctx, "POST", "/users", body, &user)
	return user, err
}

func (c *Client) SetUserLock(ctx context.Context, userID int64, locked bool) error {
	return c.do(ctx, "PUT", fmt.Sprintf("/users/%d/lock", userID),
		map[string]bool{"isLocked": locked}, nil)
}

// Assistant endpoint, consumed by the chat widget.

type chatQueryResponse struct {
	Reply string `json:"reply"`
}

func (c *Client) ChatQuery(ctx context.Context, message string, userID int64) (string, error) {
	body := map[string]any{"message": message, "userId": userID}
	var resp chatQueryResponse
	if err := c.do(ctx, "POST", "/chatbot/query", body, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Screen data, consumed by the view layer. Failures here recover locally;
// they never tear the session down except through ErrSessionExpired.

func (c *Client) Documents(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := c.doList(ctx, "GET", "/documents", nil, &docs)
	return docs, err
}

func (c *Client) Document(ctx context.Context, id int64) (models.Document, error) {
	var doc models.Document
	err := c.do(ctx, "GET", fmt.Sprintf("/documents/%d", id), nil, &doc)
	return doc, err
}

func (c *Client) DocumentComments(ctx context.Context, documentID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := c.doList(ctx, "GET", fmt.Sprintf("/documents/%d/comments", documentID), nil, &comments)
	return comments, err
}

func (c *Client) UploadDocument(ctx context.Context, title string, categoryID int64, fileName, mime string, content []byte) (models.Document, error) {
	body := map[string]any{
		"title":      title,
		"categoryId": categoryID,
		"fileName":   fileName,
		"mimeType":   mime,
		"content":    content,
	}
	var doc models.Document
	err := c.do(ctx, "POST", "/documents", body, &doc)
	return doc, err
}

func (c *Client) Profile(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	err := c.do(ctx, "GET", fmt.Sprintf("/users/%d", userID), nil, &user)
	return user, err
}

func (c *Client) Notifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	var items []models.Notification
	err := c.doList(ctx, "GET", fmt.Sprintf("/users/%d/notifications", userID), nil, &items)
	return items, err
}

func (c *Client) Notification(ctx context.Context, id int64) (models.Notification, error) {
	var item models.Notification
	err := c.do(ctx, "GET", fmt.Sprintf("/notifications/%d", id), nil, &item)
	return item, err
}

func (c *Client) Following(ctx context.Context, userID int64) ([]models.FollowEntry, error) {
	var items []models.FollowEntry
	err := c.doList(ctx, "GET", fmt.Sprintf("/users/%d/following", userID), nil, &items)
	return items, err
}

func (c *Client) Posts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := c.doList(ctx, "GET", "/posts", nil, &posts)
	return posts, err
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := c.doList(ctx, "GET", "/categories", nil, &cats)
	return cats, err
}
