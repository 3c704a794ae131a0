package dto

// TransitionDeckRequest identifies the scanned deck for a pickup or drop.
type TransitionDeckRequest struct {
	QRCodeString string `json:"qrCodeString" binding:"required"`
}

// BulkTransitionRequest applies one action to many decks by ID.
type BulkTransitionRequest struct {
	DeckIDs []string `json:"deckIds" binding:"required,min=1"`
	Action  string   `json:"action" binding:"required"`
}

// AnswerSheetCountRequest records the sheets counted in a deck.
type AnswerSheetCountRequest struct {
	QRCodeString         string `json:"qrCodeString" binding:"required"`
	NumberOfAnswerSheets *int   `json:"numberOfAnswerSheets" binding:"required"`
}

// PurgeResponse reports how many decks were removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// DispatchResponse reports how many mails were handed to the dispatcher.
type DispatchResponse struct {
	Queued int `json:"queued"`
}

// PamphletResponse describes a rendered label sheet when the caller asks
// for a link instead of the PDF body.
type PamphletResponse struct {
	Filename    string `json:"filename"`
	Labels      int    `json:"labels"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}
