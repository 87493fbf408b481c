package dto

import (
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"github.com/Eursukkul/parking-reservation/internal/service"
)

type SpaceResponse struct {
	ID          string           `json:"id"`
	SpaceNumber int              `json:"spaceNumber"`
	Type        models.SpaceType `json:"type"`
	Location    string           `json:"location"`
}

type UserResponse struct {
	UID           string            `json:"uid"`
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Department    models.Department `json:"department,omitempty"`
	Role          models.Role       `json:"role"`
	IsActive      bool              `json:"isActive"`
	PasswordReset bool              `json:"passwordReset"`
	LastLoginAt   *time.Time        `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

type DocumentResponse struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `json:"uploadedAt"`
	URL         string    `json:"url,omitempty"`
}

type ReservationResponse struct {
	ID                 string                   `json:"id"`
	UserID             string                   `json:"userId"`
	SpaceID            string                   `json:"spaceId"`
	StartDate          models.Date              `json:"startDate"`
	EndDate            models.Date              `json:"endDate"`
	ShiftType          models.ShiftType         `json:"shiftType"`
	TimeSlot           string                   `json:"timeSlot"`
	Status             models.ReservationStatus `json:"status"`
	ScheduleDocument   *DocumentResponse        `json:"scheduleDocument"`
	ApprovedBy         string                   `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time               `json:"approvedAt,omitempty"`
	RejectedBy         string                   `json:"rejectedBy,omitempty"`
	RejectedAt         *time.Time               `json:"rejectedAt,omitempty"`
	RejectionReason    string                   `json:"rejectionReason,omitempty"`
	CancelledBy        string                   `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time               `json:"cancelledAt,omitempty"`
	CancellationReason string                   `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time                `json:"createdAt"`
	UpdatedAt          time.Time                `json:"updatedAt"`
	User               *UserResponse            `json:"user,omitempty"`
	Space              *SpaceResponse           `json:"space,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type ValidateResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

type SpacesResponse struct {
	Success bool            `json:"success"`
	Spaces  []SpaceResponse `json:"spaces"`
}

type DashboardSpace struct {
	SpaceResponse
	IsAvailable map[models.ShiftType]bool `json:"isAvailable"`
}

type DashboardResponse struct {
	Success bool             `json:"success"`
	Date    models.Date      `json:"date"`
	Spaces  []DashboardSpace `json:"spaces"`
}

type AvailabilityResponse struct {
	Success   bool             `json:"success"`
	Available bool             `json:"available"`
	SpaceID   string           `json:"spaceId"`
	StartDate models.Date      `json:"startDate"`
	EndDate   models.Date      `json:"endDate"`
	ShiftType models.ShiftType `json:"shiftType"`
}

type ReservationEnvelope struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	Reservation ReservationResponse `json:"reservation"`
}

type ReservationsResponse struct {
	Success      bool                  `json:"success"`
	Reservations []ReservationResponse `json:"reservations"`
	Pagination   *Pagination           `json:"pagination,omitempty"`
}

type DocumentEnvelope struct {
	Success       bool                 `json:"success"`
	Document      DocumentResponse     `json:"document"`
	Reservation   *ReservationResponse `json:"reservation,omitempty"`
	ExpiresInSecs int                  `json:"expiresIn"`
}

type UploadResponse struct {
	Success  bool             `json:"success"`
	Document DocumentResponse `json:"document"`
}

type ProfileResponse struct {
	Success      bool                  `json:"success"`
	User         UserResponse          `json:"user"`
	Reservations []ReservationResponse `json:"reservations,omitempty"`
}

type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	HasMore  bool  `json:"hasMore"`
}

func NewPagination(page, pageSize int, total int64) *Pagination {
	return &Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  int64(page*pageSize) < total,
	}
}

type UsersResponse struct {
	Success    bool           `json:"success"`
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination"`
}

type UserEnvelope struct {
	Success           bool         `json:"success"`
	Message           string       `json:"message,omitempty"`
	User              UserResponse `json:"user"`
	TemporaryPassword string       `json:"temporaryPassword,omitempty"`
}

type BulkResponse struct {
	Success bool                     `json:"success"`
	Results []service.BulkItemResult `json:"results"`
	Errors  []service.BulkItemError  `json:"errors"`
}

type StatsTotals struct {
	Reservations int64 `json:"reservations"`
	Users        int64 `json:"users"`
	ActiveUsers  int64 `json:"activeUsers"`
	Spaces       int64 `json:"spaces"`
}

type StatsPeriod struct {
	StartDate       models.Date `json:"startDate"`
	EndDate         models.Date `json:"endDate"`
	NewReservations int64       `json:"newReservations"`
}

type StatsResponse struct {
	Success          bool                               `json:"success"`
	Totals           StatsTotals                        `json:"totals"`
	ByStatus         map[models.ReservationStatus]int64 `json:"byStatus"`
	ByShift          map[models.ShiftType]int64         `json:"byShift"`
	WithDocuments    int64                              `json:"withDocuments"`
	Period           StatsPeriod                        `json:"period"`
	SpaceUtilization []repository.SpaceUsage            `json:"spaceUtilization"`
	UserActivity     []repository.UserUsage             `json:"userActivity"`
	Recent           []ReservationResponse              `json:"recent"`
}

func ToSpaceResponse(s *models.ParkingSpace) SpaceResponse {
	return SpaceResponse{
		ID:          s.ID,
		SpaceNumber: s.SpaceNumber,
		Type:        s.Type,
		Location:    s.Location,
	}
}

func ToSpaceResponses(spaces []models.ParkingSpace) []SpaceResponse {
	out := make([]SpaceResponse, len(spaces))
	for i := range spaces {
		out[i] = ToSpaceResponse(&spaces[i])
	}
	return out
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		UID:           u.UID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Department:    u.Department,
		Role:          u.Role,
		IsActive:      u.IsActive,
		PasswordReset: u.PasswordReset,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

func ToUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

func ToDocumentResponse(doc *models.ScheduleDocument) DocumentResponse {
	return DocumentResponse{
		Filename:    doc.Filename,
		Size:        doc.Size,
		ContentType: doc.ContentType,
		UploadedAt:  doc.UploadedAt,
		URL:         doc.URL,
	}
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		SpaceID:            r.SpaceID,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		ShiftType:          r.ShiftType,
		TimeSlot:           r.ShiftType.Window(),
		Status:             r.Status,
		ApprovedBy:         r.ApprovedBy,
		ApprovedAt:         r.ApprovedAt,
		RejectedBy:         r.RejectedBy,
		RejectedAt:         r.RejectedAt,
		RejectionReason:    r.RejectionReason,
		CancelledBy:        r.CancelledBy,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if doc := r.Document(); doc != nil {
		d := ToDocumentResponse(doc)
		resp.ScheduleDocument = &d
	}
	if r.User != nil {
		u := ToUserResponse(r.User)
		resp.User = &u
	}
	if r.Space != nil {
		s := ToSpaceResponse(r.Space)
		resp.Space = &s
	}
	return resp
}

func ToReservationResponses(list []models.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, len(list))
	for i := range list {
		out[i] = ToReservationResponse(&list[i])
	}
	return out
}

func ToDashboardResponse(day models.Date, spaces []service.SpaceAvailability) DashboardResponse {
	out := DashboardResponse{Success: true, Date: day, Spaces: make([]DashboardSpace, len(spaces))}
	for i := range spaces {
		out.Spaces[i] = DashboardSpace{
			SpaceResponse: ToSpaceResponse(&spaces[i].Space),
			IsAvailable:   spaces[i].Shifts,
		}
	}
	return out
}

func ToStatsResponse(s *service.Stats) StatsResponse {
	return StatsResponse{
		Success: true,
		Totals: StatsTotals{
			Reservations: s.TotalReservations,
			Users:        s.TotalUsers,
			ActiveUsers:  s.ActiveUsers,
			Spaces:       s.TotalSpaces,
		},
		ByStatus:      s.ByStatus,
		ByShift:       s.ByShift,
		WithDocuments: s.WithDocuments,
		Period: StatsPeriod{
			StartDate:       s.PeriodStart,
			EndDate:         s.PeriodEnd,
			NewReservations: s.NewReservations,
		},
		SpaceUtilization: nonNil(s.SpaceUtilization),
		UserActivity:     nonNil(s.UserActivity),
		Recent:           ToReservationResponses(s.Recent),
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
