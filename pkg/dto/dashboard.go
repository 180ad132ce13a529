package dto

type DashboardWidget struct {
	ID       string `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	W        int    `json:"w"`
	H        int    `json:"h"`
	MinW     *int   `json:"min_w,omitempty"`
	MinH     *int   `json:"min_h,omitempty"`
	MaxW     *int   `json:"max_w,omitempty"`
	MaxH     *int   `json:"max_h,omitempty"`
	NoResize *bool  `json:"no_resize,omitempty"`
	NoMove   *bool  `json:"no_move,omitempty"`
}

type SaveLayoutRequest struct {
	Widgets []DashboardWidget `json:"widgets"`
}

type AddWidgetRequest struct {
	AppID string `json:"app_id"`
}
