package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateReservationRequest binds from JSON or from multipart form fields.
type CreateReservationRequest struct {
	SpaceID   string `json:"spaceId" form:"spaceId" validate:"required"`
	StartDate string `json:"startDate" form:"startDate" validate:"required,isodate"`
	EndDate   string `json:"endDate" form:"endDate" validate:"required,isodate"`
	ShiftType string `json:"shiftType" form:"shiftType" validate:"required,shift"`
}

type UpdateReservationRequest struct {
	StartDate *string `json:"startDate" form:"startDate" validate:"omitempty,isodate"`
	EndDate   *string `json:"endDate" form:"endDate" validate:"omitempty,isodate"`
	ShiftType *string `json:"shiftType" form:"shiftType" validate:"omitempty,shift"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

type AvailabilityQuery struct {
	SpaceID              string `query:"spaceId" validate:"required"`
	StartDate            string `query:"startDate" validate:"required,isodate"`
	EndDate              string `query:"endDate" validate:"required,isodate"`
	ShiftType            string `query:"shiftType" validate:"required,shift"`
	ExcludeReservationID string `query:"excludeReservationId"`
}

type DashboardQuery struct {
	Date string `query:"date" validate:"omitempty,isodate"`
}

type ProfileUpdateRequest struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Username   *string `json:"username"`
	Department *string `json:"department" validate:"omitempty,department"`
}

type CreateUserRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Username   string `json:"username"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department" validate:"omitempty,department"`
	Role       string `json:"role" validate:"omitempty,userrole"`
}

type AdminUpdateUserRequest struct {
	ProfileUpdateRequest
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,userrole"`
	IsActive *bool   `json:"isActive"`
}

type BulkUserRequest struct {
	Action  string   `json:"action" validate:"required,oneof=activate deactivate delete updateRole updateDepartment resetPassword"`
	UserIDs []string `json:"userIds" validate:"required,min=1,max=100"`
	Data    struct {
		Role       string `json:"role"`
		Department string `json:"department"`
	} `json:"data"`
}

type UserListQuery struct {
	Role       string `query:"role" validate:"omitempty,userrole"`
	Department string `query:"department" validate:"omitempty,department"`
	Search     string `query:"search"`
	SortBy     string `query:"sortBy" validate:"omitempty,oneof=createdAt email username lastLoginAt"`
	SortOrder  string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page       int    `query:"page" validate:"min=0"`
	PageSize   int    `query:"pageSize" validate:"min=0"`
}

type ReservationListQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=pending active rejected cancelled"`
	UserID   string `query:"userId"`
	SpaceID  string `query:"spaceId"`
	Page     int    `query:"page" validate:"min=0"`
	PageSize int    `query:"pageSize" validate:"min=0"`
}

// AdminReservationAction drives PUT /api/admin/reservations/:id.
type AdminReservationAction struct {
	Action string                    `json:"action" validate:"required,oneof=approve reject cancel update"`
	Reason string                    `json:"reason"`
	Data   *UpdateReservationRequest `json:"data"`
}

type StatsQuery struct {
	StartDate string `query:"startDate" validate:"omitempty,isodate"`
	EndDate   string `query:"endDate" validate:"omitempty,isodate"`
}
