package internal

import "time"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Token string `json:"-"`
	// ExpiresAt is zero when the identity came from the remote lookup.
	ExpiresAt time.Time `json:"-"`
}

type Diary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"` // YYYY-MM-DD, no time component
	UserInput string    `json:"userInput"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DiaryListItem is the list view of a diary; it carries only the opening of the content.
type DiaryListItem struct {
	ID             string    `json:"id"`
	Date           string    `json:"date"`
	ContentPreview string    `json:"contentPreview"`
	CreatedAt      time.Time `json:"createdAt"`
}

const previewLength = 50

func (d *Diary) ListItem() DiaryListItem {
	preview := []rune(d.Content)
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	return DiaryListItem{
		ID:             d.ID,
		Date:           d.Date,
		ContentPreview: string(preview),
		CreatedAt:      d.CreatedAt,
	}
}
