package domain

// ShopRole — роль магазина в синхронизации.
type ShopRole string

const (
	RoleSource ShopRole = "source"
	RoleTarget ShopRole = "target"
)

// ShopLanguage — язык витрины магазина.
type ShopLanguage struct {
	Code      string
	IsDefault bool
	IsActive  bool
}

// Shop описывает один инстанс магазина. Список магазинов загружается
// один раз при старте процесса и не изменяется.
type Shop struct {
	TLD       string
	Name      string
	Role      ShopRole
	Languages []ShopLanguage
}

// DefaultLanguage возвращает код языка по умолчанию.
func (s Shop) DefaultLanguage() string {
	for _, l := range s.Languages {
		if l.IsDefault {
			return l.Code
		}
	}

	return ""
}

// ActiveLanguages возвращает коды активных языков в порядке конфигурации.
func (s Shop) ActiveLanguages() []string {
	codes := make([]string, 0, len(s.Languages))
	for _, l := range s.Languages {
		if l.IsActive {
			codes = append(codes, l.Code)
		}
	}

	return codes
}
