package models

// Training is a catalog entry, unique by the (name, date, price) triple. Two
// entries sharing name and date but priced differently are distinct rows.
type Training struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Date  string  `db:"date" json:"date"`
	Price float64 `db:"price" json:"price"`
}

// TrainingReference links a training to the registration (and, for group
// registrations, the attendee) that selected it.
type TrainingReference struct {
	ID             string  `db:"id" json:"id"`
	TrainingID     string  `db:"training_id" json:"training_id"`
	RegistrationID string  `db:"registration_id" json:"registration_id"`
	AttendeeID     *string `db:"attendee_id" json:"attendee_id,omitempty"`
}

// TrainingReferenceDetail joins a reference with its catalog entry, used by the
// export datasets.
type TrainingReferenceDetail struct {
	TrainingReference
	TrainingName  string  `db:"training_name" json:"training_name"`
	TrainingDate  string  `db:"training_date" json:"training_date"`
	TrainingPrice float64 `db:"training_price" json:"training_price"`
}
