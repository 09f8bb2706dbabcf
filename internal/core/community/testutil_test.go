package community

import "github.com/openfoia/foiagraph/internal/core/model"

func graphOf(ids []string, pairs [][2]string) model.GraphExport {
	g := model.GraphExport{}
	for _, id := range ids {
		g.Entities = append(g.Entities, model.ExportedEntity{ID: id, Type: model.EntityPerson, Name: "entity " + id})
	}
	for _, p := range pairs {
		g.Links = append(g.Links, model.Link{Source: p[0], Target: p[1], Relation: model.RelCommunicatedWith, Confidence: model.ConfidenceProbable})
	}
	return g
}

func memberIDs(c model.Community) []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}
