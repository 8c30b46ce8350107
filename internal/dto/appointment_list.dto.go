package dto

import "time"

type AppointmentListDTO struct {
	ID          uint      `json:"id"`
	PublicCode  string    `json:"public_code"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	ClientName  string    `json:"client_name"`
	ServiceName string    `json:"service_name"`
	Price       float64   `json:"price"`
}
