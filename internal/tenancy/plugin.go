package tenancy

import (
	"reflect"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// companyColumn is the foreign key every tenant-owned model carries.
const companyColumn = "company_id"

// Plugin is a gorm plugin that scopes registered models to the active
// company of the statement's context. Reads, updates and deletes get a
// company_id condition appended; creates get a zero company_id stamped.
// Contexts built with WithBypass or WithForcedCompany change that per call
// site, everything else is automatic.
type Plugin struct {
	mu    sync.RWMutex
	owned map[reflect.Type]struct{}
}

// NewPlugin returns an empty plugin. Tenant-owned models are opted in with
// Register before the first query runs.
func NewPlugin() *Plugin {
	return &Plugin{owned: make(map[reflect.Type]struct{})}
}

// Register marks models as tenant-owned. Each must carry a company_id
// column; models never registered are left untouched by the plugin.
func (p *Plugin) Register(models ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range models {
		t := reflect.TypeOf(m)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		p.owned[t] = struct{}{}
	}
}

// Name implements gorm.Plugin.
func (p *Plugin) Name() string {
	return "tenancy"
}

// Initialize implements gorm.Plugin, hooking the statement pipeline.
func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenancy:filter_query", p.filter); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenancy:filter_row", p.filter); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenancy:filter_update", p.filter); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenancy:filter_delete", p.filter); err != nil {
		return err
	}
	return db.Callback().Create().Before("gorm:create").Register("tenancy:stamp_create", p.stamp)
}

func (p *Plugin) ownedModel(db *gorm.DB) bool {
	if db.Statement.Schema == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.owned[db.Statement.Schema.ModelType]
	return ok
}

// filter appends "<table>.company_id = <active company>" to the statement
// unless the context is bypassed or carries no active company.
func (p *Plugin) filter(db *gorm.DB) {
	if !p.ownedModel(db) {
		return
	}
	companyID, ok := ActiveCompany(db.Statement.Context)
	if !ok {
		return
	}
	db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: companyColumn},
			Value:  companyID,
		},
	}})
}

// stamp fills a zero company_id with the active company before the INSERT
// is built, so the stamp is part of the same statement as the rest of the
// record. An explicitly set company_id is always kept.
func (p *Plugin) stamp(db *gorm.DB) {
	if !p.ownedModel(db) {
		return
	}
	companyID, ok := ActiveCompany(db.Statement.Context)
	if !ok {
		return
	}
	field := db.Statement.Schema.LookUpField(companyColumn)
	if field == nil {
		return
	}

	switch db.Statement.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < db.Statement.ReflectValue.Len(); i++ {
			rv := db.Statement.ReflectValue.Index(i)
			if _, zero := field.ValueOf(db.Statement.Context, rv); zero {
				_ = field.Set(db.Statement.Context, rv, companyID)
			}
		}
	case reflect.Struct:
		if _, zero := field.ValueOf(db.Statement.Context, db.Statement.ReflectValue); zero {
			_ = field.Set(db.Statement.Context, db.Statement.ReflectValue, companyID)
		}
	}
}
