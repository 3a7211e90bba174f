package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Application struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID        string        `bson:"tenantId" json:"tenantId"`
	ApplicationCode string        `bson:"applicationCode" json:"applicationCode"`
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

// IsZero reports whether the record is the empty value returned by
// lookups that matched nothing.
func (a Application) IsZero() bool {
	return a == Application{}
}

// IsEnabled treats an unset enabled flag as true, the schema default.
func (a Application) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// Document renders the record as a field map for schema validation and
// storage. Zero-valued fields are left out so required-field checks can
// tell "missing" from "provided but invalid".
func (a Application) Document() map[string]any {
	doc := make(map[string]any)
	if a.TenantID != "" {
		doc["tenantId"] = a.TenantID
	}
	if a.ApplicationCode != "" {
		doc["applicationCode"] = a.ApplicationCode
	}
	if a.ApplicationName != "" {
		doc["applicationName"] = a.ApplicationName
	}
	if a.Enabled != nil {
		doc["enabled"] = *a.Enabled
	}
	if a.Description != "" {
		doc["description"] = a.Description
	}
	if a.Logo != "" {
		doc["logo"] = a.Logo
	}
	if a.Favicon != "" {
		doc["favicon"] = a.Favicon
	}
	if a.CreatedBy != "" {
		doc["createdBy"] = a.CreatedBy
	}
	if a.UpdatedBy != "" {
		doc["updatedBy"] = a.UpdatedBy
	}
	if !a.CreatedDate.IsZero() {
		doc["createdDate"] = a.CreatedDate
	}
	if a.UpdatedDate != nil {
		doc["updatedDate"] = *a.UpdatedDate
	}
	return doc
}

type ApplicationRepository interface {
	Save(context.Context, *Application) (*Application, error)
	FindByCode(context.Context, string) (Application, error)
	FindByCodeAndEnabled(context.Context, string, bool) (Application, error)
	FindByID(context.Context, string) (Application, error)
	FindOne(context.Context, map[string]any) (Application, error)
	FindAll(context.Context, int) ([]Application, error)
	Update(context.Context, string, map[string]any) (UpdateResult, error)
	DeleteAll(context.Context) (int64, error)
}
