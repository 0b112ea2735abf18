package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

type address struct {
	Street string
	City   string
}

type user struct {
	ID      Ref
	Name    string
	Age     *int32
	Status  orderStatus
	Tags    []string
	Home    *address
	Joined  time.Time
	Balance Money
	Lang    language.Tag
}

var statusValues = map[orderStatus]string{
	statusOpen:      "OPEN",
	statusPaid:      "PAID",
	statusCancelled: "CANCELLED",
}

func newAddressMapper() *EntityMapper {
	return NewEntity[address]("",
		NewField("street", String,
			func(a *address) string { return a.Street },
			func(a *address, v string) *address { a.Street = v; return a }),
		NewField("city", String,
			func(a *address) string { return a.City },
			func(a *address, v string) *address { a.City = v; return a }),
	)
}

func newUserMapper(addressMapper *EntityMapper) *EntityMapper {
	return NewEntity[user]("",
		NewField("id", Reference,
			func(u *user) Ref { return u.ID },
			func(u *user, v Ref) *user { u.ID = v; return u }),
		NewField("name", String,
			func(u *user) string { return u.Name },
			func(u *user, v string) *user { u.Name = v; return u }),
		NewPtrField("age", Int32,
			func(u *user) *int32 { return u.Age },
			func(u *user, v *int32) *user { u.Age = v; return u }),
		NewField("status", MustEnum(allStatuses, statusValues),
			func(u *user) orderStatus { return u.Status },
			func(u *user, v orderStatus) *user { u.Status = v; return u }),
		NewSliceField("tags", String,
			func(u *user) []string { return u.Tags },
			func(u *user, v []string) *user { u.Tags = v; return u }),
		NewField("home", addressMapper,
			func(u *user) *address { return u.Home },
			func(u *user, v *address) *user { u.Home = v; return u }),
		NewField("joined", DateTime,
			func(u *user) time.Time { return u.Joined },
			func(u *user, v time.Time) *user { u.Joined = v; return u }),
		NewField("balance", MoneyValue,
			func(u *user) Money { return u.Balance },
			func(u *user, v Money) *user { u.Balance = v; return u }),
		NewField("lang", LocaleTag,
			func(u *user) language.Tag { return u.Lang },
			func(u *user, v language.Tag) *user { u.Lang = v; return u }),
	)
}

func buildUserSchema(t *testing.T) *EntityMapper {
	t.Helper()
	addressMapper := newAddressMapper()
	userMapper := newUserMapper(addressMapper)
	reg := NewRegistry()
	require.NoError(t, reg.Register(userMapper))
	return userMapper
}

func TestEntityMapper_RoundTrip(t *testing.T) {
	userMapper := buildUserSchema(t)

	age := int32(34)
	original := &user{
		ID:      NewRef(),
		Name:    "Ana",
		Age:     &age,
		Status:  statusPaid,
		Tags:    []string{"vip", "beta"},
		Home:    &address{Street: "Rua A", City: "São Paulo"},
		Joined:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Balance: Money{Amount: 100_00, Currency: currency.BRL},
		Lang:    language.BrazilianPortuguese,
	}

	raw, err := userMapper.ToDB(original)
	require.NoError(t, err)
	doc := raw.(Document)

	// O carimbo _modified pertence à camada DAO e não afeta o round-trip.
	doc[FieldModified] = time.Now().UnixMilli()

	back, err := userMapper.FromDB(doc)
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestEntityMapper_NullOmission(t *testing.T) {
	userMapper := buildUserSchema(t)

	t.Run("should never write keys for null values", func(t *testing.T) {
		raw, err := userMapper.ToDB(&user{Name: "Bia", Status: statusOpen})
		require.NoError(t, err)
		doc := raw.(Document)

		assert.NotContains(t, doc, "age")
		assert.NotContains(t, doc, "home")
		assert.NotContains(t, doc, "joined")
		assert.NotContains(t, doc, "balance")
		assert.NotContains(t, doc, "lang")
		assert.NotContains(t, doc, "id")
		// Coleção nula vira array vazio, nunca null.
		assert.Equal(t, []any{}, doc["tags"])
	})

	t.Run("should leave missing keys at their unset state on read", func(t *testing.T) {
		got, err := userMapper.FromDB(Document{"name": "Caio", "status": "OPEN"})
		require.NoError(t, err)
		u := got.(*user)
		assert.Nil(t, u.Age)
		assert.Nil(t, u.Home)
		assert.True(t, u.Joined.IsZero())
		assert.True(t, u.ID.IsZero())
	})
}

func TestEntityMapper_VersionAndDiscriminatorReads(t *testing.T) {
	userMapper := buildUserSchema(t)

	t.Run("should record a non-fatal error for a non-integer version", func(t *testing.T) {
		var errs ErrorList
		got := userMapper.FromDBWithErrors(Document{"name": "Ana", "status": "OPEN", FieldVersion: "two"}, &errs)
		require.NotNil(t, got)
		assert.Equal(t, "Ana", got.(*user).Name)
		require.Equal(t, 1, errs.Len())
		assert.Equal(t, ErrWrongType, errs.Errors()[0].Kind)
	})

	t.Run("should record an error for a non-string discriminator", func(t *testing.T) {
		var errs ErrorList
		got := userMapper.FromDBWithErrors(Document{"name": "Ana", "status": "OPEN", FieldType: int64(7)}, &errs)
		require.NotNil(t, got)
		require.Equal(t, 1, errs.Len())
		assert.Equal(t, ErrWrongType, errs.Errors()[0].Kind)
	})
}

func TestEntityMapper_SchemaDrift(t *testing.T) {
	userMapper := buildUserSchema(t)

	var errs ErrorList
	got := userMapper.FromDBWithErrors(Document{
		"name":       "Ana",
		"status":     "OPEN",
		"legacy":     true,
		FieldID:      "u1",
		FieldType:    "",
		FieldVersion: int64(0),
	}, &errs)

	require.NotNil(t, got)
	require.Equal(t, 1, errs.Len())
	drift := errs.Errors()[0]
	assert.Equal(t, ErrNotMapped, drift.Kind)
	assert.Contains(t, drift.Message, `"legacy"`)
}

func TestEntityMapper_PartialFailureContainment(t *testing.T) {
	type fragile struct {
		A string
		B string
		C string
	}

	m := NewEntity[fragile]("",
		NewField("a", String,
			func(f *fragile) string { panic("getter exploded") },
			func(f *fragile, v string) *fragile { f.A = v; return f }),
		NewField("b", String,
			func(f *fragile) string { return f.B },
			func(f *fragile, v string) *fragile { f.B = v; return f }),
		NewField("c", String,
			func(f *fragile) string { return f.C },
			func(f *fragile, v string) *fragile { f.C = v; return f }),
	)
	reg := NewRegistry()
	require.NoError(t, reg.Register(m))

	var errs ErrorList
	doc := m.ToDBWithErrors(&fragile{B: "b!", C: "c!"}, &errs)

	require.NotNil(t, doc)
	assert.NotContains(t, doc, "a")
	assert.Equal(t, "b!", doc["b"])
	assert.Equal(t, "c!", doc["c"])

	require.Equal(t, 1, errs.Len())
	failed := errs.Errors()[0]
	assert.Equal(t, ErrAccess, failed.Kind)
	assert.Equal(t, "fragile.a", failed.Source)
}

func TestEntityMapper_MalformedFieldsAccumulate(t *testing.T) {
	userMapper := buildUserSchema(t)

	var errs ErrorList
	got := userMapper.FromDBWithErrors(Document{
		"name":   int64(1),
		"status": "NOPE",
		"age":    int32(30),
	}, &errs)

	require.NotNil(t, got)
	u := got.(*user)
	// O campo bom é aplicado mesmo com os irmãos falhando.
	require.NotNil(t, u.Age)
	assert.Equal(t, int32(30), *u.Age)

	require.Equal(t, 2, errs.Len())
	sources := []string{errs.Errors()[0].Source, errs.Errors()[1].Source}
	assert.Contains(t, sources, "user.name")
	assert.Contains(t, sources, "user.status")
}

// --- polimorfismo ---

type vehicle interface {
	Brand() string
	SetBrand(string)
}

type car struct {
	brand string
	Doors int32
}

func (c *car) Brand() string     { return c.brand }
func (c *car) SetBrand(b string) { c.brand = b }

type bike struct {
	brand    string
	Electric bool
}

func (b *bike) Brand() string     { return b.brand }
func (b *bike) SetBrand(s string) { b.brand = s }

func buildVehicleSchema(t *testing.T) (*Registry, *EntityMapper, *EntityMapper, *EntityMapper) {
	t.Helper()

	vehicleMapper := NewAbstractEntity[vehicle]("",
		NewField("brand", String,
			func(v vehicle) string { return v.Brand() },
			func(v vehicle, s string) vehicle { v.SetBrand(s); return v }),
	)
	carMapper := NewEntity[car]("car",
		NewField("doors", Int32,
			func(c *car) int32 { return c.Doors },
			func(c *car, v int32) *car { c.Doors = v; return c }),
	).AddSuper(Super(vehicleMapper))
	bikeMapper := NewEntity[bike]("bike",
		NewField("electric", Bool,
			func(b *bike) bool { return b.Electric },
			func(b *bike, v bool) *bike { b.Electric = v; return b }),
	).AddSuper(Super(vehicleMapper))

	reg := NewRegistry()
	require.NoError(t, reg.Register(vehicleMapper, carMapper, bikeMapper))
	return reg, vehicleMapper, carMapper, bikeMapper
}

func TestEntityMapper_PolymorphicResolution(t *testing.T) {
	_, vehicleMapper, _, _ := buildVehicleSchema(t)

	t.Run("should read the sub-entity matching the discriminator", func(t *testing.T) {
		got, err := vehicleMapper.FromDB(Document{
			FieldType: "car",
			"brand":   "fiat",
			"doors":   int64(4),
		})
		require.NoError(t, err)

		c, ok := got.(*car)
		require.True(t, ok, "expected *car, got %T", got)
		assert.Equal(t, "fiat", c.Brand())
		assert.Equal(t, int32(4), c.Doors)
	})

	t.Run("should stamp the discriminator on a polymorphic write", func(t *testing.T) {
		raw, err := vehicleMapper.ToDB(&bike{Electric: true})
		require.NoError(t, err)
		doc := raw.(Document)
		assert.Equal(t, "bike", doc[FieldType])
		assert.Equal(t, true, doc["electric"])
	})

	t.Run("should not stamp the discriminator on a direct write", func(t *testing.T) {
		_, _, carMapper, _ := buildVehicleSchema(t)
		raw, err := carMapper.ToDB(&car{Doors: 2})
		require.NoError(t, err)
		doc := raw.(Document)
		assert.NotContains(t, doc, FieldType)
	})

	t.Run("should fall back to the called mapper when the discriminator is unknown", func(t *testing.T) {
		_, _, carMapper, _ := buildVehicleSchema(t)
		got, err := carMapper.FromDB(Document{FieldType: "hovercraft", "doors": int64(3)})
		require.NoError(t, err)
		c, ok := got.(*car)
		require.True(t, ok)
		assert.Equal(t, int32(3), c.Doors)
	})

	t.Run("should round-trip through the abstract mapper", func(t *testing.T) {
		_, vm, _, _ := buildVehicleSchema(t)
		original := &car{Doors: 5}
		original.SetBrand("vw")

		raw, err := vm.ToDB(original)
		require.NoError(t, err)
		back, err := vm.FromDB(raw)
		require.NoError(t, err)
		assert.Equal(t, original, back)
	})
}

// --- campos de construtor ---

type geoPoint struct {
	Lat             float64
	Lon             float64
	ElevationMeters float64
}

func newGeoPointMapper() *EntityMapper {
	return NewEntity[geoPoint]("geoPoint",
		NewConstructorField("lat", Float64, func(p *geoPoint) float64 { return p.Lat }),
		NewConstructorField("lon", Float64, func(p *geoPoint) float64 { return p.Lon }),
		NewConstructorField("elevationMeters", Float64, func(p *geoPoint) float64 { return p.ElevationMeters }),
	).SetConstructor(3, func(args []any) (any, error) {
		p := &geoPoint{}
		if v, ok := args[0].(float64); ok {
			p.Lat = v
		}
		if v, ok := args[1].(float64); ok {
			p.Lon = v
		}
		if v, ok := args[2].(float64); ok {
			p.ElevationMeters = v
		}
		return p, nil
	})
}

func TestEntityMapper_ConstructorFields(t *testing.T) {
	t.Run("should build the point from constructor fields without any setter", func(t *testing.T) {
		m := newGeoPointMapper()
		reg := NewRegistry()
		require.NoError(t, reg.Register(m))

		got, err := m.FromDB(Document{"lat": 52.1, "lon": 4.9, "elevationMeters": 0.0})
		require.NoError(t, err)

		p := got.(*geoPoint)
		assert.Equal(t, 52.1, p.Lat)
		assert.Equal(t, 4.9, p.Lon)
		assert.Equal(t, 0.0, p.ElevationMeters)
	})

	t.Run("should write exactly the three keys and no top-level discriminator", func(t *testing.T) {
		m := newGeoPointMapper()
		reg := NewRegistry()
		require.NoError(t, reg.Register(m))

		raw, err := m.ToDB(&geoPoint{Lat: 52.1, Lon: 4.9, ElevationMeters: 0.0})
		require.NoError(t, err)
		doc := raw.(Document)

		assert.Len(t, doc, 3)
		assert.Equal(t, 52.1, doc["lat"])
		assert.Equal(t, 4.9, doc["lon"])
		assert.Equal(t, 0.0, doc["elevationMeters"])
		assert.NotContains(t, doc, FieldType)
	})

	t.Run("should abort instantiation when a constructor field fails", func(t *testing.T) {
		m := newGeoPointMapper()
		reg := NewRegistry()
		require.NoError(t, reg.Register(m))

		got, err := m.FromDB(Document{"lat": "north", "lon": 4.9, "elevationMeters": 1.0})
		assert.Nil(t, got)

		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
		require.Len(t, cerr.Errs, 1)
		assert.Equal(t, "geoPoint.lat", cerr.Errs[0].Source)
	})

	t.Run("should contain a constructor panic on a missing key", func(t *testing.T) {
		// Construtor com type asserts diretos: uma chave ausente passa nil
		// nos args e o assert entra em panic.
		m := NewEntity[geoPoint]("geoPoint",
			NewConstructorField("lat", Float64, func(p *geoPoint) float64 { return p.Lat }),
			NewConstructorField("lon", Float64, func(p *geoPoint) float64 { return p.Lon }),
			NewConstructorField("elevationMeters", Float64, func(p *geoPoint) float64 { return p.ElevationMeters }),
		).SetConstructor(3, func(args []any) (any, error) {
			return &geoPoint{
				Lat:             args[0].(float64),
				Lon:             args[1].(float64),
				ElevationMeters: args[2].(float64),
			}, nil
		})
		reg := NewRegistry()
		require.NoError(t, reg.Register(m))

		got, err := m.FromDB(Document{"lon": 4.9, "elevationMeters": 0.0})
		assert.Nil(t, got)

		var cerr *ConversionError
		require.ErrorAs(t, err, &cerr)
		require.Len(t, cerr.Errs, 1)
		assert.Equal(t, ErrNoInstance, cerr.Errs[0].Kind)
		assert.Contains(t, cerr.Errs[0].Message, "could not be constructed")
	})

	t.Run("should require a constructor when constructor fields exist", func(t *testing.T) {
		m := NewEntity[geoPoint]("geoPoint",
			NewConstructorField("lat", Float64, func(p *geoPoint) float64 { return p.Lat }),
		)
		err := NewRegistry().Register(m)
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Contains(t, err.Error(), "constructor")
	})

	t.Run("should reject a constructor arity mismatch", func(t *testing.T) {
		m := NewEntity[geoPoint]("geoPoint",
			NewConstructorField("lat", Float64, func(p *geoPoint) float64 { return p.Lat }),
			NewConstructorField("lon", Float64, func(p *geoPoint) float64 { return p.Lon }),
		).SetConstructor(1, func(args []any) (any, error) { return &geoPoint{}, nil })
		err := NewRegistry().Register(m)
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
	})
}

func TestEntityMapper_VersionWindows(t *testing.T) {
	type doc2 struct {
		Old string
		New string
	}

	build := func(t *testing.T) *EntityMapper {
		m := NewEntity[doc2]("",
			NewField("old", String,
				func(d *doc2) string { return d.Old },
				func(d *doc2, v string) *doc2 { d.Old = v; return d }).Versions(0, 1),
			NewField("new", String,
				func(d *doc2) string { return d.New },
				func(d *doc2, v string) *doc2 { d.New = v; return d }).Versions(2, NoMaxVersion),
		).SetCurrentVersion(0)
		require.NoError(t, NewRegistry().Register(m))
		return m
	}

	t.Run("should gate reads by the document version", func(t *testing.T) {
		m := build(t)
		got, err := m.FromDB(Document{FieldVersion: int64(2), "new": "n"})
		require.NoError(t, err)
		d := got.(*doc2)
		assert.Equal(t, "n", d.New)

		// Versão ausente vale 0: o campo com janela [2, ∞) não participa.
		got, err = m.FromDB(Document{"old": "o", "new": "n"})
		d = got.(*doc2)
		assert.Equal(t, "o", d.Old)
		assert.Empty(t, d.New)
		assert.NoError(t, err)
	})

	t.Run("should require a declared version when windows are non-trivial", func(t *testing.T) {
		m := NewEntity[doc2]("",
			NewField("old", String,
				func(d *doc2) string { return d.Old },
				func(d *doc2, v string) *doc2 { d.Old = v; return d }).Versions(0, 1),
		)
		err := NewRegistry().Register(m)
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Contains(t, err.Error(), "version")
	})
}

func TestEntityMapper_UseBeforeInitialization(t *testing.T) {
	m := newAddressMapper()
	_, err := m.ToDB(&address{Street: "x"})
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, err.Error(), "before initialization")
}
