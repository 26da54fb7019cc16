package transfer

type LinkedinUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type LinkedinShareCommentary struct {
	Text string `json:"text"`
}

type LinkedinShareContent struct {
	ShareCommentary    LinkedinShareCommentary `json:"shareCommentary"`
	ShareMediaCategory string                  `json:"shareMediaCategory"`
}

type LinkedinPostRequest struct {
	Author          string                          `json:"author"`
	LifecycleState  string                          `json:"lifecycleState"`
	SpecificContent map[string]LinkedinShareContent `json:"specificContent"`
	Visibility      map[string]string               `json:"visibility"`
}

type LinkedinPostResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type LinkedinMetricsResponse struct {
	LikesSummary struct {
		TotalLikes int `json:"totalLikes"`
	} `json:"likesSummary"`
	CommentsSummary struct {
		TotalComments int `json:"totalComments"`
	} `json:"commentsSummary"`
}
