package models

import (
	"time"

	"gorm.io/gorm"

	"cleanorder-api/internal/core/domain"
)

// ============================================================
// Auth & User Tables
// ============================================================

// Role represents roles table
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FullName  string         `gorm:"size:150;not null" json:"full_name"`
	RoleID    uint           `gorm:"not null;default:2" json:"role_id"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	RoleID    uint      `json:"role_id"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		RoleID:    u.RoleID,
		Role:      domain.RoleID(u.RoleID).Name(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.Role != nil {
		resp.Role = u.Role.Name
	}
	return resp
}

// ToDomain converts the row into the domain user
func (u *User) ToDomain() *domain.User {
	return &domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		FullName:  u.FullName,
		RoleID:    domain.RoleID(u.RoleID),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RevokedToken represents revoked_tokens table. Rows are kept until the
// token would have expired anyway.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenID   string    `gorm:"size:64;uniqueIndex;not null" json:"token_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

func (rt *RevokedToken) IsExpired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}

// ============================================================
// Catalog Tables
// ============================================================

// Region zona de servicio (Catalog)
type Region struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nombre    string    `gorm:"size:100;uniqueIndex;not null" json:"nombre"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Region) TableName() string {
	return "regions"
}

// OrderStatus estado de orden (Catalog)
type OrderStatus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	StepOrder int       `gorm:"not null" json:"step_order"`
	Color     string    `gorm:"size:20" json:"color"`
	IsFinal   bool      `gorm:"default:false" json:"is_final"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OrderStatus) TableName() string {
	return "order_statuses"
}

// ============================================================
// Main Tables
// ============================================================

// Order orden de servicio
type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Folio           int            `gorm:"uniqueIndex;not null" json:"folio"`
	StatusID        uint           `gorm:"not null;index;default:1" json:"status_id"`
	Cliente         string         `gorm:"size:150" json:"cliente"`
	RegionID        *uint          `gorm:"index" json:"region_id"`
	Direccion       string         `gorm:"size:255" json:"direccion"`
	Observaciones   string         `gorm:"type:text" json:"observaciones"`
	HorasTrabajo    float64        `gorm:"type:decimal(6,2);default:0" json:"horas_trabajo"`
	EmployeeID      uint           `gorm:"not null;index" json:"employee_id"`
	FechaRegistro   time.Time      `gorm:"autoCreateTime" json:"fecha_registro"`
	FechaAgendada   *time.Time     `json:"fecha_agendada"`
	FechaFinalizado *time.Time     `json:"fecha_finalizado"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Status   *OrderStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Region   *Region      `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	Employee *User        `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// RegionRef is the nested region in the order payload
type RegionRef struct {
	ID     uint   `json:"id"`
	Nombre string `json:"nombre"`
}

// OrderResponse DTO. Keys follow the mobile client contract.
type OrderResponse struct {
	ID              uint       `json:"id"`
	Folio           int        `json:"folio"`
	IDEstado        uint       `json:"idEstado"`
	Estado          string     `json:"estado"`
	Cliente         string     `json:"cliente,omitempty"`
	Region          *RegionRef `json:"region,omitempty"`
	Direccion       string     `json:"direccion,omitempty"`
	Observaciones   string     `json:"observaciones,omitempty"`
	HorasTrabajo    float64    `json:"horasTrabajo"`
	EmpleadoID      uint       `json:"empleadoId"`
	EmpleadoNombre  string     `json:"empleadoNombre,omitempty"`
	FechaRegistro   time.Time  `json:"fechaRegistro"`
	FechaAgendada   *time.Time `json:"fechaAgendada,omitempty"`
	FechaFinalizado *time.Time `json:"fechaFinalizado,omitempty"`
}

func (o *Order) ToResponse() *OrderResponse {
	resp := &OrderResponse{
		ID:              o.ID,
		Folio:           o.Folio,
		IDEstado:        o.StatusID,
		Estado:          domain.StatusID(o.StatusID).Name(),
		Cliente:         o.Cliente,
		Direccion:       o.Direccion,
		Observaciones:   o.Observaciones,
		HorasTrabajo:    o.HorasTrabajo,
		EmpleadoID:      o.EmployeeID,
		FechaRegistro:   o.FechaRegistro,
		FechaAgendada:   o.FechaAgendada,
		FechaFinalizado: o.FechaFinalizado,
	}

	if o.Status != nil {
		resp.Estado = o.Status.Name
	}
	if o.Region != nil {
		resp.Region = &RegionRef{ID: o.Region.ID, Nombre: o.Region.Nombre}
	}
	if o.Employee != nil {
		resp.EmpleadoNombre = o.Employee.FullName
	}

	return resp
}

// OrderStatusHistory historial de cambios de estado
type OrderStatusHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	FromStatusID uint      `gorm:"not null" json:"from_status_id"`
	ToStatusID   uint      `gorm:"not null" json:"to_status_id"`
	ChangedBy    uint      `gorm:"not null" json:"changed_by"`
	IPAddress    string    `gorm:"size:50" json:"ip_address"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Order *Order `gorm:"foreignKey:OrderID" json:"-"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&Role{},
		&User{},
		&RevokedToken{},
		// Catalog
		&Region{},
		&OrderStatus{},
		// Main
		&Order{},
		&OrderStatusHistory{},
	)
}
