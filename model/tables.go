package model

// ContentTables are the records managed through the admin panel
var ContentTables = []interface{}{
	&Property{},
	&Product{},
	&Service{},
	&GalleryImage{},
	&MediaItem{},
	&BlogPost{},
}

// Tables lists every model migrated by the database store
var Tables = append(append([]interface{}{}, ContentTables...),
	// Identity and profiles
	&Account{},
	&UserProfile{},
	&JWTTokenBlacklist{},

	// Settings and audit
	&AppSetting{},
	&AdminAuditLog{},
	&CronJobLog{},
)
