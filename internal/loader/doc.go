// Package loader строит деревья TaskHolder из декларативных конфигураций.
//
// Конфигурация описывается в JSON или YAML:
//
//	{
//	    "vars": {"prefix": "/tmp/test"},
//	    "tasks": [
//	        {
//	            "run": "copy",
//	            "target": "{prefix}/{name}.{ext}",
//	            "status": "execute",
//	            "options": {},
//	            "metadata": {"match.types": ["exr"]},
//	            "vars": {"seq": "010"},
//	            "tasks": [
//	                {"include": "review.json"}
//	            ]
//	        }
//	    ]
//	}
//
// Переменные корня вместе с configPath и configName становятся
// context-переменными узлов верхнего уровня. Собственные vars узла
// становятся его context-переменными. Запись include заменяется
// содержимым внешнего файла; относительный путь разрешается от
// каталога включающего файла.
package loader
