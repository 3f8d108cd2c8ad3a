// Package geolens is a Go client for the geolens session API.
//
// A session is one interactive search client: form inputs, a map with result
// markers, a rectangle selection tool and user-visible notices. Every call
// returns the session state after the action.
//
//	client, _ := geolens.New("http://localhost:8080")
//	sess, _ := client.CreateSession(ctx)
//	s := client.Session(sess.ID)
//
//	res, err := s.Search(ctx, &geolens.Inputs{
//	    Text:  "river bank",
//	    Start: geolens.Period{Year: "2023"},
//	})
//	if errors.Is(err, geolens.ErrInvalidBounds) {
//	    // inspect err.(*geolens.APIError).Details
//	}
//	for _, card := range res.Session.Cards {
//	    fmt.Println(card.Index, card.Score, card.ImageURL)
//	}
//
// # Rectangle selection
//
//	s.Click(ctx, 55.7, 37.5, true) // first corner
//	s.Move(ctx, 55.8, 37.7)
//	s.Click(ctx, 55.9, 37.8, true) // second corner fills the coordinate inputs
package geolens
