package request

// CreateThreadRequest opens a conversation with an auditor for an
// engagement. The calling user becomes the thread's client party.
type CreateThreadRequest struct {
	AuditorId    string `json:"auditor_id" binding:"required"`
	EngagementId string `json:"engagement_id"`
	Subject      string `json:"subject" binding:"max=120"`
}

// HistoryPageRequest is the query side of a message history page.
// Before is a message id cursor ("M..." form); zero value means the
// newest page.
type HistoryPageRequest struct {
	Before string `form:"before"`
	Limit  int    `form:"limit,default=50" binding:"min=1,max=200"`
}
