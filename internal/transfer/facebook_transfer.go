package transfer

type FacebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type FacebookUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

type FacebookPagesResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

type FacebookPageIGResponse struct {
	ID                       string `json:"id"`
	InstagramBusinessAccount struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

type FacebookError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FbtraceID    string `json:"fbtrace_id"`
}

type FacebookPostResponse struct {
	ID    string         `json:"id"`
	Error *FacebookError `json:"error"`
}

type FacebookMetricsResponse struct {
	Shares struct {
		Count int `json:"count"`
	} `json:"shares"`
	Likes struct {
		Summary struct {
			TotalCount int `json:"total_count"`
		} `json:"summary"`
	} `json:"likes"`
	Comments struct {
		Summary struct {
			TotalCount int `json:"total_count"`
		} `json:"summary"`
	} `json:"comments"`
}

type InstagramContainerResponse struct {
	ID    string         `json:"id"`
	Error *FacebookError `json:"error"`
}

type InstagramMetricsResponse struct {
	LikeCount     int `json:"like_count"`
	CommentsCount int `json:"comments_count"`
}
