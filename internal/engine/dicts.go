package engine

// German sample data for synthetic waiting-room records.
var (
	LastNames = []string{
		"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Schulz", "Hoffmann",
		"Schäfer", "Koch", "Bauer", "Richter", "Klein", "Wolf", "Schröder", "Neumann", "Schwarz", "Zimmermann",
		"Braun", "Krüger", "Hofmann", "Hartmann", "Lange", "Schmitt", "Werner", "Krause", "Meier", "Lehmann",
	}
	FirstNames = []string{
		"Anna", "Maria", "Ursula", "Monika", "Petra", "Sabine", "Julia", "Lena", "Sophie", "Jürgen",
		"Peter", "Michael", "Thomas", "Andreas", "Stefan", "Klaus", "Lukas", "Jonas", "Felix", "Günter",
		"Emma", "Mia", "Hannah", "Paul", "Ben", "Leon", "Elias", "Käthe", "Jörg", "Björn",
	}
	// Praxis-EDV system codes
	Systems = []string{"KV", "PRI", "BG", "SZ"}
	// Abrechnungsziffern (EBM)
	GNRs = []string{"03000", "03220", "03221", "03230", "04000", "04220", "09210", "06211", "32030", "01100"}
	Ziele = []string{"Sprechzimmer 1", "Sprechzimmer 2", "Labor", "EKG", "Röntgen", "Audiometrie", "Sehtest", "Impfung", "Verband"}
	// Kostenträgergruppen
	KTGRs = []string{"00", "01", "02", "03", "07", "09"}
	Remarks = []string{
		"Kontrolle", "Rezept abholen", "Überweisung", "Blutabnahme nüchtern", "AU-Bescheinigung",
		"Impfpass mitbringen", "Befundbesprechung", "Wiedervorstellung in 2 Wochen", "Notfall", "",
	}
)
