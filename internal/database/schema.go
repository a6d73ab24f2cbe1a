package database

// Migrations is the released, append-only schema history. New changes get a
// new version at the end of the list.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create_lookup_tables",
		Statements: []string{
			`CREATE TABLE categories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE CHECK (trim(name) <> ''),
				sort_order INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE subcategories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
				name TEXT NOT NULL CHECK (trim(name) <> ''),
				sort_order INTEGER NOT NULL DEFAULT 0,
				UNIQUE (category_id, name)
			)`,
			`CREATE TABLE colors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE CHECK (trim(name) <> ''),
				hex TEXT
			)`,
			`CREATE TABLE materials (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE CHECK (trim(name) <> '')
			)`,
			`CREATE TABLE seasons (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE CHECK (trim(name) <> '')
			)`,
			`CREATE TABLE occasions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE CHECK (trim(name) <> '')
			)`,
			`CREATE TABLE patterns (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE CHECK (trim(name) <> '')
			)`,
			`CREATE TABLE size_systems (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE CHECK (trim(name) <> '')
			)`,
			`CREATE TABLE size_values (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				size_system_id INTEGER NOT NULL REFERENCES size_systems(id) ON DELETE CASCADE,
				value TEXT NOT NULL CHECK (trim(value) <> ''),
				sort_order INTEGER NOT NULL DEFAULT 0,
				UNIQUE (size_system_id, value)
			)`,
		},
	},
	{
		Version: 2,
		Name:    "create_clothing_items",
		Statements: []string{
			`CREATE TABLE clothing_items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL CHECK (trim(name) <> ''),
				brand TEXT,
				category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
				subcategory_id INTEGER REFERENCES subcategories(id) ON DELETE SET NULL,
				size_system_id INTEGER REFERENCES size_systems(id) ON DELETE SET NULL,
				size_value_id INTEGER REFERENCES size_values(id) ON DELETE SET NULL,
				purchase_price REAL CHECK (purchase_price IS NULL OR purchase_price >= 0),
				purchase_date DATE,
				purchase_location TEXT,
				image_uri TEXT,
				notes TEXT,
				status TEXT NOT NULL DEFAULT 'Active' CHECK (status IN ('Active', 'Sold', 'Donated', 'Lost')),
				wash_status TEXT NOT NULL DEFAULT 'Clean' CHECK (wash_status IN ('Clean', 'Dirty')),
				is_favorite INTEGER NOT NULL DEFAULT 0 CHECK (is_favorite IN (0, 1)),
				created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
				updated_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
			)`,
			junctionTable("clothing_item_colors", "color_id", "colors"),
			junctionTable("clothing_item_materials", "material_id", "materials"),
			junctionTable("clothing_item_seasons", "season_id", "seasons"),
			junctionTable("clothing_item_occasions", "occasion_id", "occasions"),
			junctionTable("clothing_item_patterns", "pattern_id", "patterns"),
		},
	},
	{
		Version: 3,
		Name:    "create_outfits_and_logs",
		Statements: []string{
			`CREATE TABLE outfits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT,
				notes TEXT,
				created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
				updated_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
			)`,
			`CREATE TABLE outfit_items (
				outfit_id INTEGER NOT NULL REFERENCES outfits(id) ON DELETE CASCADE,
				clothing_item_id INTEGER NOT NULL REFERENCES clothing_items(id) ON DELETE CASCADE,
				PRIMARY KEY (outfit_id, clothing_item_id)
			)`,
			`CREATE TABLE outfit_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				outfit_id INTEGER REFERENCES outfits(id) ON DELETE SET NULL,
				log_date TEXT NOT NULL CHECK (log_date IS date(log_date)),
				is_ootd INTEGER NOT NULL DEFAULT 0 CHECK (is_ootd IN (0, 1)),
				notes TEXT,
				created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
				updated_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
			)`,
		},
	},
	{
		Version: 4,
		Name:    "create_app_settings",
		Statements: []string{
			`CREATE TABLE app_settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
			)`,
		},
	},
	{
		Version: 5,
		Name:    "add_item_measurements",
		Statements: []string{
			`ALTER TABLE clothing_items ADD COLUMN waist REAL CHECK (waist IS NULL OR waist > 0)`,
			`ALTER TABLE clothing_items ADD COLUMN inseam REAL CHECK (inseam IS NULL OR inseam > 0)`,
		},
	},
	{
		Version: 6,
		Name:    "add_outfit_log_weather",
		Statements: []string{
			`ALTER TABLE outfit_logs ADD COLUMN temperature_low REAL`,
			`ALTER TABLE outfit_logs ADD COLUMN temperature_high REAL`,
			`ALTER TABLE outfit_logs ADD COLUMN weather_condition TEXT`,
		},
	},
	{
		Version: 7,
		Name:    "unique_ootd_per_day",
		Statements: []string{
			`CREATE UNIQUE INDEX idx_outfit_logs_one_ootd_per_day ON outfit_logs(log_date) WHERE is_ootd = 1`,
		},
	},
	{
		Version: 8,
		Name:    "add_lookup_indexes",
		Statements: []string{
			`CREATE INDEX idx_subcategories_category ON subcategories(category_id)`,
			`CREATE INDEX idx_size_values_system ON size_values(size_system_id)`,
			`CREATE INDEX idx_clothing_items_category ON clothing_items(category_id)`,
			`CREATE INDEX idx_clothing_items_status ON clothing_items(status)`,
			`CREATE INDEX idx_clothing_item_colors_tag ON clothing_item_colors(color_id)`,
			`CREATE INDEX idx_clothing_item_materials_tag ON clothing_item_materials(material_id)`,
			`CREATE INDEX idx_clothing_item_seasons_tag ON clothing_item_seasons(season_id)`,
			`CREATE INDEX idx_clothing_item_occasions_tag ON clothing_item_occasions(occasion_id)`,
			`CREATE INDEX idx_clothing_item_patterns_tag ON clothing_item_patterns(pattern_id)`,
			`CREATE INDEX idx_outfit_items_item ON outfit_items(clothing_item_id)`,
			`CREATE INDEX idx_outfit_logs_date ON outfit_logs(log_date)`,
			`CREATE INDEX idx_outfit_logs_outfit ON outfit_logs(outfit_id)`,
		},
	},
}

func junctionTable(table, column, lookup string) string {
	return `CREATE TABLE ` + table + ` (
				clothing_item_id INTEGER NOT NULL REFERENCES clothing_items(id) ON DELETE CASCADE,
				` + column + ` INTEGER NOT NULL REFERENCES ` + lookup + `(id) ON DELETE CASCADE,
				PRIMARY KEY (clothing_item_id, ` + column + `)
			)`
}
