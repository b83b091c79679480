package model

// School is one row of the national school master list.
type School struct {
	ID       string `bson:"_id,omitempty" json:"id"`
	Name     string `bson:"name" json:"name"`
	EMIS     string `bson:"emis" json:"emis"`
	Province string `bson:"province" json:"province"`
}

// MarkingCentre is an exam marking venue. Centres have no EMIS number.
type MarkingCentre struct {
	ID       string `bson:"_id,omitempty" json:"id"`
	Name     string `bson:"name" json:"name"`
	Province string `bson:"province" json:"province"`
}
