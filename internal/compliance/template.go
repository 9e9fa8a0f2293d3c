package compliance

// FormTemplate is a generated, jurisdiction-aware documentation form schema.
// RequiredFields carries the merged domain-level requirement names; the
// concrete input fields inside Sections use their own vocabulary. Both
// levels are preserved deliberately.
type FormTemplate struct {
	DocumentationType string                    `json:"documentation_type"`
	Jurisdictions     []string                  `json:"jurisdictions"`
	Sections          []Section                 `json:"sections"`
	RequiredFields    []string                  `json:"required_fields"`
	ValidationRules   map[string]ValidationRule `json:"validation_rules"`
}

// Section is a titled group of form fields.
type Section struct {
	Title  string      `json:"title"`
	Fields []FieldSpec `json:"fields"`
}

// FieldSpec describes a single form input.
type FieldSpec struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Label    string   `json:"label"`
	Options  []string `json:"options,omitempty"`
}

// GenerateFormTemplate builds the form schema for a documentation type
// across the given jurisdictions. Sections are emitted conditionally, gated
// on merged-category membership, and always in the same priority order:
// Patient Demographics, Physician Orders, Care Plan, Signatures.
func (e *Engine) GenerateFormTemplate(codes []string, documentationType string) *FormTemplate {
	req := e.MergedRequirements(codes)

	tmpl := &FormTemplate{
		DocumentationType: documentationType,
		Jurisdictions:     append([]string{}, codes...),
		Sections:          []Section{},
		RequiredFields:    req.RequiredFields,
		ValidationRules:   ValidationRules(req),
	}

	if contains(req.RequiredFields, ReqPatientDemographics) {
		tmpl.Sections = append(tmpl.Sections, patientDemographicsSection())
	}
	if contains(req.RequiredFields, ReqPhysicianOrders) {
		tmpl.Sections = append(tmpl.Sections, physicianOrdersSection(req.VisitFrequencies))
	}
	if contains(req.RequiredFields, ReqCarePlan) {
		tmpl.Sections = append(tmpl.Sections, carePlanSection())
	}
	if len(req.SignatureRequirements) > 0 {
		tmpl.Sections = append(tmpl.Sections, signaturesSection())
	}

	return tmpl
}

func patientDemographicsSection() Section {
	return Section{
		Title: "Patient Demographics",
		Fields: []FieldSpec{
			{Name: "firstName", Type: "text", Required: true, Label: "First Name"},
			{Name: "lastName", Type: "text", Required: true, Label: "Last Name"},
			{Name: "dateOfBirth", Type: "date", Required: true, Label: "Date of Birth"},
			{Name: "address", Type: "text", Required: true, Label: "Address"},
			{Name: "phone", Type: "tel", Required: true, Label: "Phone"},
		},
	}
}

func physicianOrdersSection(frequencies []string) Section {
	return Section{
		Title: "Physician Orders",
		Fields: []FieldSpec{
			{Name: "physicianName", Type: "text", Required: true, Label: "Physician Name"},
			{Name: "orderDate", Type: "date", Required: true, Label: "Order Date"},
			{Name: "orders", Type: "textarea", Required: true, Label: "Orders"},
			{Name: "visitFrequency", Type: "select", Required: true, Label: "Visit Frequency",
				Options: append([]string{}, frequencies...)},
		},
	}
}

func carePlanSection() Section {
	return Section{
		Title: "Care Plan",
		Fields: []FieldSpec{
			{Name: "goals", Type: "textarea", Required: true, Label: "Goals"},
			{Name: "interventions", Type: "textarea", Required: true, Label: "Interventions"},
			{Name: "expectedOutcomes", Type: "textarea", Required: true, Label: "Expected Outcomes"},
		},
	}
}

func signaturesSection() Section {
	return Section{
		Title: "Signatures",
		Fields: []FieldSpec{
			{Name: "nurseSignature", Type: "signature", Required: true, Label: "Nurse Signature"},
			{Name: "supervisorSignature", Type: "signature", Required: false, Label: "Supervisor Signature"},
			{Name: "signatureDate", Type: "date", Required: true, Label: "Signature Date"},
		},
	}
}
