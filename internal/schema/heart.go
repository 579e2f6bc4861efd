package schema

// Target is the label column of the heart disease dataset.
const Target = "num"

// HeartDisease returns the schema of the UCI heart disease dataset
// (catalog id 45). Domains follow the observed values of the dataset; every
// feature may be null, the target may not.
func HeartDisease() Schema {
	s, err := New(
		Column{Name: "age", Type: Integer, Nullable: true, Domain: Range{Lo: 1, Hi: 120}},
		Column{Name: "sex", Type: Integer, Nullable: true, Domain: OneOf(0, 1)},
		Column{Name: "cp", Type: Integer, Nullable: true, Domain: OneOf(1, 2, 3, 4)},
		Column{Name: "trestbps", Type: Integer, Nullable: true, Domain: Range{Lo: 10, Hi: 300}},
		Column{Name: "chol", Type: Integer, Nullable: true, Domain: Range{Lo: 100, Hi: 600}},
		Column{Name: "fbs", Type: Integer, Nullable: true, Domain: OneOf(0, 1)},
		Column{Name: "restecg", Type: Integer, Nullable: true, Domain: OneOf(0, 1, 2)},
		Column{Name: "thalach", Type: Integer, Nullable: true, Domain: Range{Lo: 50, Hi: 250}},
		Column{Name: "exang", Type: Integer, Nullable: true, Domain: OneOf(0, 1)},
		Column{Name: "oldpeak", Type: Float, Nullable: true, Domain: AtLeast(0)},
		Column{Name: "slope", Type: Integer, Nullable: true, Domain: OneOf(1, 2, 3)},
		Column{Name: "ca", Type: Float, Nullable: true, Domain: OneOf(0, 1, 2, 3)},
		Column{Name: "thal", Type: Float, Nullable: true, Domain: OneOf(3, 6, 7)},
		Column{Name: Target, Type: Integer, Nullable: false, Domain: OneOf(0, 1, 2, 3, 4)},
	)
	if err != nil {
		// static definition; only reachable through a programming error
		panic(err)
	}
	return s
}
