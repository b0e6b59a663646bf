package scenario

// BuiltIn returns predefined scenarios laid out against config/zones.example.yaml.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"intrusion": {
			Name:        "Intrusion",
			Description: "A person walks in from the left and stops inside the gate.",
			VideoID:     "intrusion",
			Width:       1280,
			Height:      720,
			FPS:         25,
			Frames:      100,
			Objects: []Object{{
				ID:    "1",
				Class: "Person",
				Box:   Size{W: 0.05, H: 0.2},
				Waypoints: []Waypoint{
					{Frame: 0, X: 0.05, Y: 0.75},
					{Frame: 40, X: 0.42, Y: 0.80},
					{Frame: 99, X: 0.42, Y: 0.80},
				},
			}},
		},
		"loiter": {
			Name:        "Loiter",
			Description: "A vehicle parks in the yard strip for eight seconds.",
			VideoID:     "loiter",
			Width:       1280,
			Height:      720,
			FPS:         25,
			Frames:      250,
			Objects: []Object{{
				ID:    "7",
				Class: "Vehicle",
				Box:   Size{W: 0.15, H: 0.12},
				Waypoints: []Waypoint{
					{Frame: 0, X: 0.98, Y: 0.70},
					{Frame: 25, X: 0.75, Y: 0.70},
					{Frame: 225, X: 0.75, Y: 0.72},
					{Frame: 249, X: 0.98, Y: 0.72},
				},
			}},
		},
		"flicker": {
			Name:        "Flicker",
			Description: "A person stands in the gate while the tracker keeps losing their id.",
			VideoID:     "flicker",
			Width:       1280,
			Height:      720,
			FPS:         25,
			Frames:      50,
			Objects: []Object{{
				Class:       "Person",
				Box:         Size{W: 0.05, H: 0.2},
				UnstableIDs: true,
				Waypoints:   []Waypoint{{Frame: 0, X: 0.40, Y: 0.80}, {Frame: 49, X: 0.45, Y: 0.80}},
			}},
		},
	}
}
