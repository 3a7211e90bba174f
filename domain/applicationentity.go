package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ApplicationEntity is the numeric-code sibling of Application. It is
// keyed by an integer code plus the owning applicationId and carries no
// tenant field.
type ApplicationEntity struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ApplicationID   int           `bson:"applicationId" json:"applicationId"`
	Code            int           `bson:"code" json:"code"`
	ApplicationName string        `bson:"applicationName" json:"applicationName"`
	Enabled         *bool         `bson:"enabled,omitempty" json:"enabled,omitempty"`
	Description     string        `bson:"description,omitempty" json:"description,omitempty"`
	Logo            string        `bson:"logo,omitempty" json:"logo,omitempty"`
	Favicon         string        `bson:"favicon,omitempty" json:"favicon,omitempty"`
	CreatedBy       string        `bson:"createdBy" json:"createdBy"`
	UpdatedBy       string        `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedDate     time.Time     `bson:"createdDate" json:"createdDate"`
	UpdatedDate     *time.Time    `bson:"updatedDate,omitempty" json:"updatedDate,omitempty"`
}

func (e ApplicationEntity) IsZero() bool {
	return e == ApplicationEntity{}
}

func (e ApplicationEntity) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Document renders the record as a field map, leaving zero values out.
// Integer fields treat 0 as "not provided"; codes start at 1.
func (e ApplicationEntity) Document() map[string]any {
	doc := make(map[string]any)
	if e.ApplicationID != 0 {
		doc["applicationId"] = e.ApplicationID
	}
	if e.Code != 0 {
		doc["code"] = e.Code
	}
	if e.ApplicationName != "" {
		doc["applicationName"] = e.ApplicationName
	}
	if e.Enabled != nil {
		doc["enabled"] = *e.Enabled
	}
	if e.Description != "" {
		doc["description"] = e.Description
	}
	if e.Logo != "" {
		doc["logo"] = e.Logo
	}
	if e.Favicon != "" {
		doc["favicon"] = e.Favicon
	}
	if e.CreatedBy != "" {
		doc["createdBy"] = e.CreatedBy
	}
	if e.UpdatedBy != "" {
		doc["updatedBy"] = e.UpdatedBy
	}
	if !e.CreatedDate.IsZero() {
		doc["createdDate"] = e.CreatedDate
	}
	if e.UpdatedDate != nil {
		doc["updatedDate"] = *e.UpdatedDate
	}
	return doc
}

type ApplicationEntityRepository interface {
	Save(context.Context, *ApplicationEntity) (*ApplicationEntity, error)
	FindByCode(context.Context, int) (ApplicationEntity, error)
	FindByCodeAndEnabled(context.Context, int, bool) (ApplicationEntity, error)
	FindByID(context.Context, string) (ApplicationEntity, error)
	FindOne(context.Context, map[string]any) (ApplicationEntity, error)
	FindAll(context.Context, int) ([]ApplicationEntity, error)
	Update(context.Context, string, map[string]any) (UpdateResult, error)
	DeleteAll(context.Context) (int64, error)
}
