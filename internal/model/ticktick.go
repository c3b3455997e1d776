package model

// TickTick open API shapes. Status and priority are numeric on the wire:
// status 0 = open, 2 = completed; priority 1/3/5 = low/medium/high.

type TickTickTask struct {
	ID           string   `json:"id"`
	ProjectID    string   `json:"projectId"`
	Title        string   `json:"title"`
	Content      string   `json:"content,omitempty"`
	Desc         string   `json:"desc,omitempty"`
	Status       int      `json:"status"`
	Priority     int      `json:"priority"`
	StartDate    string   `json:"startDate,omitempty"`
	DueDate      string   `json:"dueDate,omitempty"`
	CreatedTime  string   `json:"createdTime,omitempty"`
	ModifiedTime string   `json:"modifiedTime,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

type TickTickProjectData struct {
	Project struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
	Tasks []TickTickTask `json:"tasks"`
}

type TickTickErrorResponse struct {
	ErrorID      string `json:"errorId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}
