package leads

// Stats are aggregate counts over the whole directory.
type Stats struct {
	Total        int `json:"total"`
	WithEmail    int `json:"withEmail"`
	WithPhone    int `json:"withPhone"`
	WithLinkedIn int `json:"withLinkedIn"`
}

// ComputeStats counts leads with each kind of contact data.
func ComputeStats(all []Lead) Stats {
	s := Stats{Total: len(all)}
	for i := range all {
		lead := &all[i]
		if lead.HasEmail() {
			s.WithEmail++
		}
		if lead.HasPhone() {
			s.WithPhone++
		}
		if lead.LinkedIn() != "" {
			s.WithLinkedIn++
		}
	}
	return s
}
