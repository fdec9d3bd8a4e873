// Package workflow defines the closed set of clinical documentation workflows
// and the form-field kinds the extraction engine operates on.
//
// A workflow is selected once per documentation session and determines which
// field catalog and extractor family are active. The set is closed: new
// workflows require a new constant, a catalog entry, and (optionally) an
// extractor family, so an unknown workflow can never silently select an empty
// catalog at runtime.
package workflow

// Type identifies a clinical documentation workflow.
type Type string

const (
	VitalSigns               Type = "vital-signs"
	MedicationAdministration Type = "medication-administration"
	PatientAssessment        Type = "patient-assessment"
	WoundCare                Type = "wound-care"
	ShiftHandoff             Type = "shift-handoff"
	Admission                Type = "admission"
	Discharge                Type = "discharge"
	GeneralNote              Type = "general-note"
)

// IsValid reports whether t is a recognised workflow type.
func (t Type) IsValid() bool {
	switch t {
	case VitalSigns, MedicationAdministration, PatientAssessment, WoundCare,
		ShiftHandoff, Admission, Discharge, GeneralNote:
		return true
	}
	return false
}

// All returns every recognised workflow type in a stable order.
func All() []Type {
	return []Type{
		VitalSigns,
		MedicationAdministration,
		PatientAssessment,
		WoundCare,
		ShiftHandoff,
		Admission,
		Discharge,
		GeneralNote,
	}
}

// FieldKind classifies how a form field stores its value. The merge policy
// depends on it: free-text (textarea) fields are only ever filled from an
// explicit spoken label, never from a domain extraction.
type FieldKind string

const (
	// KindNumber holds a numeric value (vital signs, pain level).
	KindNumber FieldKind = "number"

	// KindText holds a short free-form string (dosage, follow-up date).
	KindText FieldKind = "text"

	// KindTextarea holds long free-form narrative (assessment, notes).
	KindTextarea FieldKind = "textarea"

	// KindSelect holds one value from an enumerated vocabulary (route,
	// level of consciousness, drainage type).
	KindSelect FieldKind = "select"
)

// IsValid reports whether k is a recognised field kind.
func (k FieldKind) IsValid() bool {
	switch k {
	case KindNumber, KindText, KindTextarea, KindSelect:
		return true
	}
	return false
}
